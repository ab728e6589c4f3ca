package importer

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dashboard/internal/encoding"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Row
	}{
		{
			name:  "Comma",
			input: "customerId,amount,status\nc1,10.50,pending\nc2,20,paid\n",
			want: []Row{
				{Line: 2, Form: url.Values{"customerId": {"c1"}, "amount": {"10.50"}, "status": {"pending"}}},
				{Line: 3, Form: url.Values{"customerId": {"c2"}, "amount": {"20"}, "status": {"paid"}}},
			},
		},
		{
			name:  "SemicolonWithDecimalComma",
			input: "Status;Customer_ID;Amount\npaid;c1;1.234,56\n",
			want: []Row{
				{Line: 2, Form: url.Values{"customerId": {"c1"}, "amount": {"1234.56"}, "status": {"paid"}}},
			},
		},
		{
			name:  "BlankLinesAndExtraColumns",
			input: "\ncustomer,amount,status,note\n\nc1, 5 ,pending,first\n,,,\n",
			want: []Row{
				{Line: 4, Form: url.Values{"customerId": {"c1"}, "amount": {"5"}, "status": {"pending"}}},
			},
		},
		{
			name:  "ShortRow",
			input: "customerId,amount,status\nc1\n",
			want: []Row{
				{Line: 2, Form: url.Values{"customerId": {"c1"}, "amount": {""}, "status": {""}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, charset, err := Parse(strings.NewReader(tt.input))

			require.NoError(t, err)
			assert.Equal(t, encoding.UTF8, charset)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "Empty", input: "", wantErr: "no header row"},
		{name: "MissingStatus", input: "customerId,amount\nc1,10\n", wantErr: `missing a "status" column`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
