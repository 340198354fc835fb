package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// ImportField campo multipart con la planilla de la importación masiva.
const ImportField = "archivo"

// ProductHandler maneja las peticiones HTTP de productos (protegido).
type ProductHandler struct {
	query    *usecase.ProductUseCase
	stock    *inventory.StockUseCase
	importer *inventory.ImportUseCase
	validate *Validator
}

// NewProductHandler construye el handler.
func NewProductHandler(query *usecase.ProductUseCase, stock *inventory.StockUseCase, importer *inventory.ImportUseCase, validate *Validator) *ProductHandler {
	return &ProductHandler{query: query, stock: stock, importer: importer, validate: validate}
}

// List godoc
// @Summary      Listar productos
// @Description  Todos los productos ordenados por nombre, o los que contienen q en nombre o código.
// @Description  alerts trae los productos con cantidad <= stock mínimo.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q    query  string  false  "Texto a buscar (sin distinguir mayúsculas)"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.query.List(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Description  Acepta JSON o multipart/form-data (con imagen opcional en el campo "imagen").
// @Description  La cantidad inicial queda registrada como ingreso.
// @Tags         products
// @Security     Bearer
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body  dto.ProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	in, err := h.productRequest(c)
	if err != nil {
		return err
	}
	file, closeFile, err := formUpload(c, UploadField)
	if err != nil {
		return err
	}
	defer closeFile()

	product, err := h.stock.CreateProduct(c.UserContext(), GetActor(c), in, file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromProduct(product))
}

// Update godoc
// @Summary      Editar producto
// @Description  Un aumento de cantidad genera un ingreso por la diferencia; una baja no genera movimiento.
// @Tags         products
// @Security     Bearer
// @Accept       json,mpfd
// @Produce      json
// @Param        id    path  string              true  "ID del producto"
// @Param        body  body  dto.ProductRequest  true  "Datos del producto"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	in, err := h.productRequest(c)
	if err != nil {
		return err
	}
	file, closeFile, err := formUpload(c, UploadField)
	if err != nil {
		return err
	}
	defer closeFile()

	product, err := h.stock.EditProduct(c.UserContext(), GetActor(c), c.Params("id"), in, file)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromProduct(product))
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  Borra el producto junto con todo su historial de ingresos y salidas.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.stock.DeleteProduct(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "producto eliminado"})
}

// Import godoc
// @Summary      Importar productos desde .xlsx o .csv
// @Description  Omite filas sin código y códigos existentes; devuelve los errores por fila.
// @Tags         products
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        archivo  formData  file  true  "Planilla .xlsx o .csv"
// @Success      200      {object}  dto.ImportResult
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      403      {object}  dto.ErrorResponse
// @Router       /api/products/import [post]
func (h *ProductHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile(ImportField)
	if err != nil {
		return domain.NewValidationError(ImportField, "campo requerido")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	out, err := h.importer.Import(c.UserContext(), GetActor(c), fh.Filename, f)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// productRequest decodifica JSON o formulario y valida los campos.
func (h *ProductHandler) productRequest(c *fiber.Ctx) (dto.ProductRequest, error) {
	var in dto.ProductRequest
	if isForm(c) {
		in = dto.ProductRequest{
			Code:         c.FormValue("code"),
			Name:         c.FormValue("name"),
			Supplier:     c.FormValue("supplier"),
			SubWarehouse: c.FormValue("sub_warehouse"),
			Unit:         c.FormValue("unit"),
			Diameter:     c.FormValue("diameter"),
		}
		fields := map[string]string{}
		if v, err := formDecimal(c, "quantity"); err != nil {
			fields["quantity"] = "debe ser un número"
		} else if v != nil {
			in.Quantity = *v
		}
		if v, err := formDecimal(c, "price"); err != nil {
			fields["price"] = "debe ser un número"
		} else if v != nil {
			in.Price = *v
		}
		if v, err := formDecimal(c, "min_stock"); err != nil {
			fields["min_stock"] = "debe ser un número"
		} else {
			in.MinStock = v
		}
		if len(fields) > 0 {
			return in, &domain.ValidationError{Fields: fields}
		}
	} else if err := c.BodyParser(&in); err != nil {
		return in, invalidBody()
	}
	return in, h.validate.Struct(in)
}
