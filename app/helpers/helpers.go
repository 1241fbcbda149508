package helpers

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

type contextKey string

const (
	ContextKeyUserID   contextKey = "userID"
	ContextKeyUserRole contextKey = "userRole"
	SessionName                   = "marketplace_session"
	SessionUserIDKey              = "user_id"
	SessionUserRoleKey            = "user_role"
)

var money = accounting.Accounting{Symbol: "Rp ", Precision: 0, Thousand: "."}

// FormatMoney renders a decimal amount for display in API responses.
func FormatMoney(amount decimal.Decimal) string {
	return money.FormatMoney(amount)
}

// FormatValidationErrors flattens validator errors into a field -> message
// map suitable for a 400 response body.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	formatted := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		field := fieldErr.Field()
		if field != "" {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		switch fieldErr.Tag() {
		case "required":
			formatted[field] = "is required"
		case "min":
			formatted[field] = fmt.Sprintf("must be at least %s", fieldErr.Param())
		case "max":
			formatted[field] = fmt.Sprintf("must be at most %s", fieldErr.Param())
		case "gt":
			formatted[field] = fmt.Sprintf("must be greater than %s", fieldErr.Param())
		case "gte":
			formatted[field] = fmt.Sprintf("must be at least %s", fieldErr.Param())
		case "oneof":
			formatted[field] = fmt.Sprintf("must be one of: %s", fieldErr.Param())
		default:
			formatted[field] = "is invalid"
		}
	}
	return formatted
}
