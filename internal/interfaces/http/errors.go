package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// errorMapping código HTTP y código de error para cada error de dominio.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrDuplicateCode, fiber.StatusConflict, "DUPLICATE_CODE"},
	{domain.ErrDuplicateUser, fiber.StatusConflict, "DUPLICATE_USER"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrLastAdmin, fiber.StatusConflict, "LAST_ADMIN"},
}

// NewErrorHandler traduce los errores devueltos por los handlers a dto.ErrorResponse.
// Los errores no reconocidos responden 500 y quedan registrados con el request id.
func NewErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	log = log.Component("http")
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: fiberCode(fe.Code), Message: fe.Message})
		}

		for _, m := range errorMapping {
			if !errors.Is(err, m.target) {
				continue
			}
			resp := dto.ErrorResponse{Code: m.code, Message: err.Error()}
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				resp.Message = "datos inválidos"
				resp.Fields = ve.Fields
			}
			return c.Status(m.status).JSON(resp)
		}

		status, code := fiber.StatusInternalServerError, "INTERNAL"
		message := "no se pudo completar la operación"
		var oe *domain.OperationError
		if errors.As(err, &oe) {
			code, message = "OPERATION_FAILED", oe.Reason()
		} else if errors.Is(err, domain.ErrOperationFailed) {
			code = "OPERATION_FAILED"
		}
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error no controlado")
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
	}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	case fiber.StatusBadRequest:
		return "INVALID_BODY"
	default:
		return "INTERNAL"
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// invalidBody error 400 para cuerpos que no se pueden decodificar.
func invalidBody() error {
	return fiber.NewError(fiber.StatusBadRequest, "cuerpo inválido")
}
