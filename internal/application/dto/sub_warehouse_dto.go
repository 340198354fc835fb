package dto

// SubWarehouseResponse salida de un subalmacén con su marca de adjuntos.
type SubWarehouseResponse struct {
	Name             string `json:"name"`
	StoresAttachment bool   `json:"stores_attachment"`
}
