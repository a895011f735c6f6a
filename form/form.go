// Package form holds and validates the fee-payment draft before submission.
package form

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/aptosedu/aptpay/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report violations under the JSON field names the UI knows.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("feetype", func(fl validator.FieldLevel) bool {
		return types.FeeType(fl.Field().String()).Valid()
	})
}

// Form is the mutable draft of one payment request.
type Form struct {
	draft types.PaymentRequest
}

// New creates a draft with the page-mount defaults.
func New() *Form {
	return &Form{
		draft: types.PaymentRequest{
			FeeType: types.FeeTypeCollege,
			Amount:  decimal.Zero,
		},
	}
}

// Set replaces a single field of the draft, preserving the rest.
// Field names are the JSON names of types.PaymentRequest.
func (f *Form) Set(field string, value any) error {
	switch field {
	case "studentName":
		return setString(&f.draft.StudentName, field, value)
	case "collegeName":
		return setString(&f.draft.CollegeName, field, value)
	case "year":
		return setString(&f.draft.Year, field, value)
	case "course":
		return setString(&f.draft.Course, field, value)
	case "rollNumber":
		return setString(&f.draft.RollNumber, field, value)
	case "feeType":
		s, ok := value.(string)
		if !ok {
			if ft, isFeeType := value.(types.FeeType); isFeeType {
				s, ok = ft.String(), true
			}
		}
		if !ok {
			return fmt.Errorf("feeType expects a string, got %T", value)
		}
		f.draft.FeeType = types.FeeType(s)
		return nil
	case "amount":
		amount, err := toDecimal(value)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		f.draft.Amount = amount
		return nil
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
}

// Validate returns the names of every violated field. Submission is
// blocked while the set is non-empty.
func (f *Form) Validate() []string {
	var violated []string

	if err := validate.Struct(&f.draft); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range errs {
				violated = append(violated, fieldErr.Field())
			}
		}
	}
	if !f.draft.Amount.IsPositive() {
		violated = append(violated, "amount")
	}
	return violated
}

// Request returns a copy of the draft for submission.
func (f *Form) Request() types.PaymentRequest {
	return f.draft
}

func setString(dst *string, field string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%s expects a string, got %T", field, value)
	}
	*dst = s
	return nil
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		if v == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", value)
	}
}
