package dto

import (
	"errors"
	"reflect"
	"strings"

	"account-ledger/internal/core/domain"
	"account-ledger/pkg/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("money", validateMoney)
	}
}

// validateMoney accepts decimal strings with at most two fractional digits.
// Sign and range are checked by the services.
func validateMoney(fl validator.FieldLevel) bool {
	_, err := domain.ParseMoney(fl.Field().String())
	return err == nil
}

// BindError maps a binding failure to an application error. A malformed
// amount is reported as INVALID_AMOUNT, anything else as INVALID_REQUEST.
func BindError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "money" {
				if fe.Field() == "InitialBalance" {
					return apperror.ErrInvalidInitialBalance()
				}
				return apperror.ErrInvalidAmount()
			}
		}
	}
	return apperror.Validation(err.Error())
}

// TrimStruct trims whitespace from every exported string field (including
// *string) of a struct pointer. Values are stored as typed; escaping happens
// when they are rendered.
func TrimStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	trimFields(rv.Elem())
}

func trimFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(strings.TrimSpace(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(strings.TrimSpace(elem.String()))
			}
		}
	}
}
