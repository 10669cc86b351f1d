package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apierrors "combinepulse/internal/errors"
	"combinepulse/pkg/contracts/domain"
)

// RequestValidator decodes request parameters into the api contracts and
// validates them with struct tags
type RequestValidator struct {
	validator *validator.Validate
}

// NewRequestValidator registers the combine-specific tags
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("position", isPosition)
	_ = v.RegisterValidation("combine_test", isCombineTest)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{validator: v}
}

// Bind fills dst from the route parameters (param tag) and the query string
// (query tag), then validates it. dst must be a pointer to a struct. The
// returned error is an *APIError listing every rejected field.
func (m *RequestValidator) Bind(r *http.Request, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a pointer to a struct, got %T", dst)
	}
	elem := rv.Elem()
	typ := elem.Type()
	query := r.URL.Query()

	var problems []apierrors.ValidationError
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		var raw string
		if name := field.Tag.Get("param"); name != "" {
			raw = chi.URLParam(r, name)
		} else if name := field.Tag.Get("query"); name != "" {
			raw = strings.TrimSpace(query.Get(name))
		} else {
			continue
		}
		if raw == "" {
			continue
		}

		if err := setField(elem.Field(i), raw); err != nil {
			problems = append(problems, apierrors.ValidationError{
				Field:   jsonName(field),
				Message: err.Error(),
			})
		}
	}
	if len(problems) > 0 {
		return apierrors.NewValidationErrors(problems)
	}

	return m.ValidateStruct(dst)
}

// ValidateStruct validates a struct and returns validation errors
func (m *RequestValidator) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	problems := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(problems)
}

func setField(v reflect.Value, raw string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("must be a whole number")
		}
		v.SetInt(int64(n))
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported parameter type %s", v.Kind())
	}
	return nil
}

func jsonName(field reflect.StructField) string {
	if name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
		return name
	}
	return field.Name
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "position":
		return fmt.Sprintf("%s must be one of: %s", field, joinPositions())
	case "combine_test":
		return fmt.Sprintf("%s must be one of: %s", field, joinTests())
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isPosition accepts a tracked position code or display name
func isPosition(fl validator.FieldLevel) bool {
	_, err := domain.ParsePosition(fl.Field().String())
	return err == nil
}

// isCombineTest accepts any known combine test name
func isCombineTest(fl validator.FieldLevel) bool {
	_, err := domain.ParseTest(fl.Field().String())
	return err == nil
}

func joinPositions() string {
	names := make([]string, 0, len(domain.Positions()))
	for _, p := range domain.Positions() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func joinTests() string {
	names := make([]string, 0, len(domain.AllTests()))
	for _, t := range domain.AllTests() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
