package dto

import "io"

// ErrorResponse cuerpo de error HTTP.
// Fields solo se llena en errores de validación (campo -> motivo).
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// MessageResponse respuesta simple para operaciones sin cuerpo.
type MessageResponse struct {
	Message string `json:"message"`
}

// Upload archivo adjunto recibido en un formulario multipart.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}
