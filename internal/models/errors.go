package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidRequest      = errors.New("invalid simulation request")
	ErrInvalidInstallments = errors.New("numero_parcelas must be at least 1")
	ErrNegativeVolume      = errors.New("sales volumes cannot be negative")
	ErrEmptyScenarioID     = errors.New("scenario_id cannot be empty")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// decimal.Decimal fields are validated through their float value so numeric tags apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateSimulationRequest checks a request before it reaches the engine.
func ValidateSimulationRequest(r *SimulationRequest) error {
	if r.Installments < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrInvalidInstallments)
	}
	if r.DebitVolume.IsNegative() || r.CreditVolume.IsNegative() || r.InstallmentVolume.IsNegative() {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrNegativeVolume)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, describe(err))
	}
	return nil
}

// describe flattens validator errors into "field: tag" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
