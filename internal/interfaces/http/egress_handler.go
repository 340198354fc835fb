package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// EgressHandler maneja las salidas de stock (protegido).
type EgressHandler struct {
	query    *usecase.ProductUseCase
	stock    *inventory.StockUseCase
	validate *Validator
}

// NewEgressHandler construye el handler.
func NewEgressHandler(query *usecase.ProductUseCase, stock *inventory.StockUseCase, validate *Validator) *EgressHandler {
	return &EgressHandler{query: query, stock: stock, validate: validate}
}

// Register godoc
// @Summary      Registrar salida
// @Description  Descuenta la cantidad del producto y congela su precio en la salida.
// @Tags         egresses
// @Security     Bearer
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body  dto.EgressRequest  true  "product_id, quantity, requester_name, requester_code"
// @Success      201   {object}  dto.EgressResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/egresses [post]
func (h *EgressHandler) Register(c *fiber.Ctx) error {
	in, err := h.egressRequest(c)
	if err != nil {
		return err
	}
	file, closeFile, err := formUpload(c, UploadField)
	if err != nil {
		return err
	}
	defer closeFile()

	egress, err := h.stock.RegisterEgress(c.UserContext(), GetActor(c), in, file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromEgress(egress))
}

// GetByID godoc
// @Summary      Obtener salida por ID
// @Tags         egresses
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la salida"
// @Success      200  {object}  dto.EgressResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/egresses/{id} [get]
func (h *EgressHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetEgress(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar salida
// @Description  Devuelve la cantidad anterior a su producto y aplica la nueva; si no alcanza el
// @Description  stock nada cambia.
// @Tags         egresses
// @Security     Bearer
// @Accept       json,mpfd
// @Produce      json
// @Param        id    path  string             true  "ID de la salida"
// @Param        body  body  dto.EgressRequest  true  "Nuevos datos"
// @Success      200   {object}  dto.EgressResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/egresses/{id} [put]
func (h *EgressHandler) Update(c *fiber.Ctx) error {
	in, err := h.egressRequest(c)
	if err != nil {
		return err
	}
	file, closeFile, err := formUpload(c, UploadField)
	if err != nil {
		return err
	}
	defer closeFile()

	egress, err := h.stock.EditEgress(c.UserContext(), GetActor(c), c.Params("id"), in, file)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromEgress(egress))
}

// Delete godoc
// @Summary      Eliminar salida
// @Description  Devuelve la cantidad al producto y borra el registro.
// @Tags         egresses
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la salida"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/egresses/{id} [delete]
func (h *EgressHandler) Delete(c *fiber.Ctx) error {
	if err := h.stock.DeleteEgress(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "salida eliminada"})
}

func (h *EgressHandler) egressRequest(c *fiber.Ctx) (dto.EgressRequest, error) {
	var in dto.EgressRequest
	if isForm(c) {
		in = dto.EgressRequest{
			ProductID:     c.FormValue("product_id"),
			RequesterName: c.FormValue("requester_name"),
			RequesterCode: c.FormValue("requester_code"),
		}
		v, err := formDecimal(c, "quantity")
		if err != nil {
			return in, err
		}
		if v == nil {
			return in, domain.NewValidationError("quantity", "campo requerido")
		}
		in.Quantity = *v
	} else if err := c.BodyParser(&in); err != nil {
		return in, invalidBody()
	}
	return in, h.validate.Struct(in)
}
