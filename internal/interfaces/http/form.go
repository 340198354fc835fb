package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// UploadField campo multipart con la imagen adjunta de productos y salidas.
const UploadField = "imagen"

func isForm(c *fiber.Ctx) bool {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	return strings.HasPrefix(ct, fiber.MIMEMultipartForm) || strings.HasPrefix(ct, fiber.MIMEApplicationForm)
}

// formDecimal lee un número de formulario; acepta coma decimal ("12,5").
// Vacío devuelve nil sin error.
func formDecimal(c *fiber.Ctx, field string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, ".") {
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.NewValidationError(field, "debe ser un número")
	}
	return &v, nil
}

// formUpload abre el archivo adjunto si viene uno. close libera el archivo y siempre es
// seguro llamarlo.
func formUpload(c *fiber.Ctx, field string) (upload *dto.Upload, closeFn func(), err error) {
	closeFn = func() {}
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return nil, closeFn, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, closeFn, invalidBody()
	}
	files := form.File[field]
	if len(files) == 0 || files[0].Filename == "" || files[0].Size == 0 {
		return nil, closeFn, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, closeFn, err
	}
	return &dto.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Content:     f,
	}, func() { _ = f.Close() }, nil
}
