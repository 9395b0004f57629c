package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// decodeRequest decodes the JSON body into dst and validates it.
func (s *OpsChatApp) decodeRequest(r *http.Request, dst any) *ApiError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewBadRequestError()
	}

	if err := s.validate.Struct(dst); err != nil {
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			return NewBadRequestError()
		}
		return NewValidationError(validationDetails(vErrs))
	}

	return nil
}

func validationDetails(vErrs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		details[fe.Field()] = describe(fe)
	}
	return details
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
