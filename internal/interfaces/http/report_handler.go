package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// ReportHandler maneja el Kardex y los reportes (lectura).
type ReportHandler struct {
	uc *usecase.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Ledger godoc
// @Summary      Kardex
// @Description  Ingresos y salidas en un solo historial, del más reciente al más antiguo.
// @Description  La hora ya viene ajustada a Bolivia (UTC-4).
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/ledger [get]
func (h *ReportHandler) Ledger(c *fiber.Ctx) error {
	out, err := h.uc.Ledger(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// LedgerExport godoc
// @Summary      Exportar Kardex
// @Tags         ledger
// @Security     Bearer
// @Produce      application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query  string  false  "xlsx | pdf"  default(xlsx)
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/ledger/export [get]
func (h *ReportHandler) LedgerExport(c *fiber.Ctx) error {
	return h.export(c, usecase.ReportLedger)
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.UserContext(), GetActor(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Ingresses godoc
// @Summary      Ingresos agrupados por producto
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.IngressGroup
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/ingresses [get]
func (h *ReportHandler) Ingresses(c *fiber.Ctx) error {
	out, err := h.uc.IngressReport(c.UserContext(), GetActor(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// EgressesByRequester godoc
// @Summary      Salidas agrupadas por solicitante
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.EgressGroup
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/egresses-by-requester [get]
func (h *ReportHandler) EgressesByRequester(c *fiber.Ctx) error {
	out, err := h.uc.EgressesByRequester(c.UserContext(), GetActor(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// EgressesByProduct godoc
// @Summary      Salidas agrupadas por producto
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.EgressGroup
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/egresses-by-product [get]
func (h *ReportHandler) EgressesByProduct(c *fiber.Ctx) error {
	out, err := h.uc.EgressesByProduct(c.UserContext(), GetActor(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// TopStocked godoc
// @Summary      Productos con más stock
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RankedProduct
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/top-stocked [get]
func (h *ReportHandler) TopStocked(c *fiber.Ctx) error {
	out, err := h.uc.TopStocked(c.UserContext(), GetActor(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// TopConsumed godoc
// @Summary      Productos más consumidos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RankedProduct
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/top-consumed [get]
func (h *ReportHandler) TopConsumed(c *fiber.Ctx) error {
	out, err := h.uc.TopConsumed(c.UserContext(), GetActor(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Valuation godoc
// @Summary      Valorización por subalmacén
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LocationValuationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	out, err := h.uc.Valuation(c.UserContext(), GetActor(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar reporte
// @Description  name: inventory, low-stock, ingresses, egresses-by-requester, egresses-by-product,
// @Description  top-stocked, top-consumed, valuation.
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        name    path   string  true   "Reporte"
// @Param        format  query  string  false  "xlsx | pdf"  default(pdf)
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/{name}/export [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	return h.export(c, c.Params("name"))
}

func (h *ReportHandler) export(c *fiber.Ctx, name string) error {
	defaultFormat := usecase.FormatPDF
	if name == usecase.ReportLedger {
		defaultFormat = usecase.FormatXLSX
	}
	file, err := h.uc.Export(c.UserContext(), GetActor(c), name, c.Query("format", defaultFormat))
	if err != nil {
		return err
	}
	c.Attachment(file.Name)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Content)
}
