package dto

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// FromProduct convierte la entidad en respuesta HTTP.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Quantity:     p.Quantity,
		Price:        p.Price,
		TotalValue:   p.TotalValue(),
		Supplier:     p.Supplier,
		MinStock:     p.MinStock,
		NeedsAlert:   p.NeedsAlert(),
		SubWarehouse: string(p.SubWarehouse),
		Unit:         p.Unit,
		Diameter:     p.Diameter,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// FromProducts convierte una lista de productos.
func FromProducts(ps []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromProduct(p))
	}
	return out
}

// FromEgress convierte la salida en respuesta HTTP.
func FromEgress(e *entity.Egress) EgressResponse {
	return EgressResponse{
		ID:            e.ID,
		ProductID:     e.ProductID,
		Quantity:      e.Quantity,
		RequesterName: e.RequesterName,
		RequesterCode: e.RequesterCode,
		UnitPrice:     e.UnitPrice,
		Total:         e.Total(),
		Attachment:    e.Attachment,
		UserID:        e.UserID,
		CreatedAt:     e.CreatedAt,
	}
}

// FromUser convierte el usuario en respuesta HTTP (sin hash).
func FromUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// FromMovement convierte una fila del Kardex con el formato de fecha dado.
func FromMovement(m entity.Movement, layout string) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		Type:        m.Type,
		Timestamp:   m.Timestamp.Format(layout),
		ProductCode: m.ProductCode,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		Actor:       m.Actor,
		Detail:      m.Detail,
	}
}
