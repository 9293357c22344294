package httpapi

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared across handlers; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names instead of Go struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFailure is the 400 body for schema violations: every violated
// constraint is reported at once, grouped per field, never fail-fast on the
// first error.
type validationFailure struct {
	Message string     `json:"message"`
	Errors  [][]string `json:"errors"`
}

// checkValid runs the schema over the payload and, on failure, writes the
// full set of violations. Returns true when the payload passed.
func checkValid(w http.ResponseWriter, r *http.Request, payload any) bool {
	err := validate.Struct(payload)
	if err == nil {
		return true
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid request payload")
		return false
	}

	var (
		order  []string
		byName = map[string][]string{}
	)
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := byName[field]; !seen {
			order = append(order, field)
		}
		byName[field] = append(byName[field], constraintMessage(fe))
	}

	groups := make([][]string, 0, len(order))
	for _, field := range order {
		groups = append(groups, byName[field])
	}
	writeJSON(w, http.StatusBadRequest, validationFailure{
		Message: "Validation failed",
		Errors:  groups,
	})
	return false
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be an email", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s failed on the %s constraint", fe.Field(), fe.Tag())
	}
}
