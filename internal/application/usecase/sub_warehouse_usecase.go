package usecase

import (
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// SubWarehouseUseCase expone el conjunto fijo de subalmacenes.
type SubWarehouseUseCase struct {
	attachmentLocation entity.SubWarehouse
}

// NewSubWarehouseUseCase construye el caso de uso.
func NewSubWarehouseUseCase(attachmentLocation entity.SubWarehouse) *SubWarehouseUseCase {
	return &SubWarehouseUseCase{attachmentLocation: attachmentLocation}
}

// List devuelve los subalmacenes e indica cuál guarda imágenes adjuntas.
func (uc *SubWarehouseUseCase) List() []dto.SubWarehouseResponse {
	all := entity.AllSubWarehouses()
	out := make([]dto.SubWarehouseResponse, 0, len(all))
	for _, s := range all {
		out = append(out, dto.SubWarehouseResponse{
			Name:             string(s),
			StoresAttachment: s == uc.attachmentLocation,
		})
	}
	return out
}
