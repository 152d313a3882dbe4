package handlers

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators teaches gin's validator about decimal amounts. Safe to call more than once;
// every call reports the outcome of the first registration.
func RegisterValidators() error {
	registerOnce.Do(func() {
		registerErr = registerDecimalValidators(binding.Validator.Engine())
	})
	return registerErr
}

func registerDecimalValidators(engine any) error {
	v, ok := engine.(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", engine)
	}
	// Validations on a decimal field see its string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	if err := v.RegisterValidation("decimal_gt0", decimalSign(func(d decimal.Decimal) bool { return d.IsPositive() })); err != nil {
		return fmt.Errorf("failed to register decimal_gt0: %w", err)
	}
	if err := v.RegisterValidation("decimal_gte0", decimalSign(func(d decimal.Decimal) bool { return !d.IsNegative() })); err != nil {
		return fmt.Errorf("failed to register decimal_gte0: %w", err)
	}
	return nil
}

func decimalSign(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && ok(d)
	}
}
