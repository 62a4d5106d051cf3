package domain

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance used for struct validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// cloneStrings copies a string slice so results never alias caller input.
// Returns nil for nil input to keep omitempty JSON behavior stable.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}
