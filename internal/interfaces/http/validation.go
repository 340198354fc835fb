package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Validator valida los DTOs de entrada antes de llamar a los casos de uso.
type Validator struct {
	v *validator.Validate
}

// NewValidator registra decimal.Decimal como número y usa los nombres json/form en los errores.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("decimals", maxDecimals)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	return &Validator{v: v}
}

// Struct devuelve *domain.ValidationError con un motivo por campo, o nil.
func (val *Validator) Struct(in interface{}) error {
	err := val.v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		if _, seen := fields[e.Field()]; !seen {
			fields[e.Field()] = validationMessage(e)
		}
	}
	return &domain.ValidationError{Fields: fields}
}

// maxDecimals valida la escala sobre el decimal original del struct; fl.Field() ya es float64.
func maxDecimals(fl validator.FieldLevel) bool {
	field := reflect.Indirect(fl.Parent()).FieldByName(fl.StructFieldName())
	if !field.IsValid() {
		return true
	}
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return entity.FitsScale(d)
	case *decimal.Decimal:
		return d == nil || entity.FitsScale(*d)
	}
	return true
}

func validationMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "campo requerido"
	case "email":
		return "email inválido"
	case "min":
		if isString {
			return "debe tener al menos " + e.Param() + " caracteres"
		}
		return "debe ser al menos " + e.Param()
	case "max":
		if isString {
			return "debe tener como máximo " + e.Param() + " caracteres"
		}
		return "debe ser como máximo " + e.Param()
	case "gte":
		return "debe ser mayor o igual a " + e.Param()
	case "gt":
		return "debe ser mayor a " + e.Param()
	case "decimals":
		return "máximo 2 decimales"
	case "oneof":
		return "debe ser uno de: " + strings.ReplaceAll(e.Param(), "'", "")
	default:
		return "valor inválido"
	}
}
