package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrDuplicateCode     = errors.New("el código de producto ya existe")
	ErrDuplicateUser     = errors.New("el usuario o email ya está registrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOperationFailed   = errors.New("la operación falló")
	ErrLastAdmin         = errors.New("no se puede eliminar el último administrador")
)

// InsufficientStockError detalle de una salida rechazada por falta de stock.
type InsufficientStockError struct {
	ProductCode string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %s, solicitado %s",
		e.ProductCode, e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// OperationError falla inesperada durante una mutación; el estado quedó revertido.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrOperationFailed.Error(), e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Reason motivo para el usuario, sin la causa interna ("no se pudo registrar salida").
func (e *OperationError) Reason() string {
	return "no se pudo " + e.Op
}

// Is permite errors.Is(err, ErrOperationFailed).
func (e *OperationError) Is(target error) bool {
	return target == ErrOperationFailed
}

// ValidationError errores por campo detectados antes de tocar el estado.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError atajo para un único campo.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// WrapOperation envuelve err en OperationError salvo que ya sea un error de dominio conocido.
func WrapOperation(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrNotFound, ErrUserNotFound, ErrDuplicateCode, ErrDuplicateUser, ErrInvalidInput,
		ErrUnauthorized, ErrForbidden, ErrInsufficientStock, ErrOperationFailed, ErrLastAdmin,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &OperationError{Op: op, Err: err}
}
