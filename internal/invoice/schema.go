package invoice

import (
	"errors"
	"math"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

var fieldMessages = map[string]string{
	FieldCustomerID: "Please select a customer.",
	FieldAmount:     "Please enter an amount greater than $0.",
	FieldStatus:     "Please select an invoice status.",
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})

	// Amount rules apply to the stored value, so validate the minor units.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		d, ok := v.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}

		return minorUnits(d)
	}, decimal.Decimal{})
}

// FieldErrors maps a form field name to its validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Fields is a validated invoice form submission.
type Fields struct {
	CustomerID string          `json:"customerId" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	Status     Status          `json:"status" validate:"required,oneof=pending paid"`
}

// MinorUnits returns the amount in cents.
func (f Fields) MinorUnits() int64 {
	return minorUnits(f.Amount)
}

// Schema validates the customer, amount and status of an invoice form.
// The id and date fields are assigned by the server and never read.
type Schema struct {
	failure string
}

var (
	CreateInvoice = Schema{failure: "Missing Fields. Failed to Create Invoice."}
	UpdateInvoice = Schema{failure: "Missing Fields. Failed to Update Invoice."}
)

// FailureMessage is the summary shown above per-field errors.
func (s Schema) FailureMessage() string {
	return s.failure
}

// SafeParse coerces and validates form. On failure it returns the per-field
// messages and zero Fields; on success the returned FieldErrors is nil.
func (s Schema) SafeParse(form url.Values) (Fields, FieldErrors) {
	fields := Fields{
		CustomerID: form.Get(FieldCustomerID),
		Amount:     coerceAmount(form.Get(FieldAmount)),
		Status:     Status(form.Get(FieldStatus)),
	}

	err := validate.Struct(fields)
	if err == nil {
		return fields, nil
	}

	errs := FieldErrors{}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		errs.Add("form", err.Error())
		return Fields{}, errs
	}

	for _, e := range ve {
		errs.Add(e.Field(), fieldMessages[e.Field()])
	}

	return Fields{}, errs
}

// Scaling a decimal expands it to a big integer of 10^|exponent|, so
// amounts are bounded before any arithmetic touches them.
const (
	maxAmountExponent = 18
	minAmountExponent = -32
)

var maxAmount = decimal.New(math.MaxInt64/100, 0)

// coerceAmount parses a major-unit amount. Unparseable or out of range input
// becomes zero so it fails the same rule as a non-positive amount.
func coerceAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}

	if exp := d.Exponent(); exp > maxAmountExponent || exp < minAmountExponent {
		return decimal.Zero
	}

	if d.Abs().GreaterThan(maxAmount) {
		return decimal.Zero
	}

	return d
}

// minorUnits scales to cents rounding half away from zero. Values that do not
// fit in an int64 yield 0.
func minorUnits(d decimal.Decimal) int64 {
	cents := d.Mul(decimal.NewFromInt(100)).Round(0)
	if !cents.BigInt().IsInt64() {
		return 0
	}

	return cents.IntPart()
}
