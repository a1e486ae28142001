// Package service implements the application's business operations. The
// original system expressed slug derivation, geocoding, cascades and
// aggregate recomputation as data-model lifecycle hooks; here they are
// explicit steps around the storage calls so ordering and failure handling
// stay visible and testable.
package service

import (
	"errors"
	"fmt"
	"strings"

	"campdir/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs validator tags on an input struct and folds failures
// into a single 400-class error with per-field messages.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("Field '%s' failed on the '%s' rule", fe.Field(), fe.Tag()))
	}
	return models.NewValidationError(strings.Join(msgs, ", "))
}
