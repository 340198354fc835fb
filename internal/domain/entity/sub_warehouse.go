package entity

// SubWarehouse etiqueta de ubicación física/lógica de un producto (conjunto cerrado).
type SubWarehouse string

// Subalmacenes válidos.
const (
	SubWarehouseSCPE    SubWarehouse = "SCPE"
	SubWarehousePozo57  SubWarehouse = "POZO 57"
	SubWarehouseCentral SubWarehouse = "ALMACEN CENTRAL"
)

// AllSubWarehouses devuelve los subalmacenes en orden de presentación.
func AllSubWarehouses() []SubWarehouse {
	return []SubWarehouse{SubWarehouseSCPE, SubWarehousePozo57, SubWarehouseCentral}
}

// Valid indica si la etiqueta pertenece al conjunto enumerado.
func (s SubWarehouse) Valid() bool {
	for _, v := range AllSubWarehouses() {
		if s == v {
			return true
		}
	}
	return false
}

func (s SubWarehouse) String() string { return string(s) }
