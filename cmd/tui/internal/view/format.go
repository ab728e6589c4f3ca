package view

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/dashboard/internal/action"
)

const dbTimeout = 5 * time.Second

// FormatAmount formats an amount stored as cents into a human-readable string.
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

// DescribeState renders a rejected form submission on one line per field.
func DescribeState(s action.State) string {
	var b strings.Builder

	b.WriteString(s.Message)

	for _, field := range slices.Sorted(maps.Keys(s.Errors)) {
		fmt.Fprintf(&b, "\n  %s: %s", field, strings.Join(s.Errors[field], " "))
	}

	return b.String()
}
