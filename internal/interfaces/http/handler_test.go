package http_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

func productBody(code, qty, sub string) map[string]interface{} {
	return map[string]interface{}{
		"code":          code,
		"name":          "Producto " + code,
		"quantity":      qty,
		"price":         "5",
		"sub_warehouse": sub,
		"unit":          "pieza",
	}
}

func createProduct(t *testing.T, srv *testServer, token, code, qty, sub string) dto.ProductResponse {
	t.Helper()
	resp := srv.do(t, http.MethodPost, "/api/products", token, productBody(code, qty, sub))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.ProductResponse
	decode(t, resp, &out)
	return out
}

func getProduct(t *testing.T, srv *testServer, token, id string) dto.ProductResponse {
	t.Helper()
	resp := srv.do(t, http.MethodGet, "/api/products/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.ProductResponse
	decode(t, resp, &out)
	return out
}

func egressBody(productID, qty string) map[string]interface{} {
	return map[string]interface{}{
		"product_id":     productID,
		"quantity":       qty,
		"requester_name": "Juan Pérez",
		"requester_code": "E-10",
	}
}

func TestEgresses_FlujoDeStock(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "ana")
	p := createProduct(t, srv, token, "P-001", "100", "SCPE")

	resp := srv.do(t, http.MethodPost, "/api/egresses", token, egressBody(p.ID, "30"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var egress dto.EgressResponse
	decode(t, resp, &egress)
	assert.True(t, egress.UnitPrice.Equal(decimal.NewFromInt(5)))
	assert.True(t, getProduct(t, srv, token, p.ID).Quantity.Equal(decimal.NewFromInt(70)))

	// salida mayor al stock
	resp = srv.do(t, http.MethodPost, "/api/egresses", token, egressBody(p.ID, "120"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp dto.ErrorResponse
	decode(t, resp, &errResp)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
	assert.Contains(t, errResp.Message, "disponible 70")

	// edición que no alcanza: nada cambia
	resp = srv.do(t, http.MethodPut, "/api/egresses/"+egress.ID, token, egressBody(p.ID, "120"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.True(t, getProduct(t, srv, token, p.ID).Quantity.Equal(decimal.NewFromInt(70)))

	resp = srv.do(t, http.MethodGet, "/api/ledger", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ledger []dto.MovementResponse
	decode(t, resp, &ledger)
	require.Len(t, ledger, 2)
	assert.Equal(t, "SALIDA", ledger[0].Type)
	assert.Equal(t, "INGRESO", ledger[1].Type)

	resp = srv.do(t, http.MethodDelete, "/api/egresses/"+egress.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, getProduct(t, srv, token, p.ID).Quantity.Equal(decimal.NewFromInt(100)))

	resp = srv.do(t, http.MethodGet, "/api/egresses/"+egress.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProducts_ValidacionYDuplicado(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "ana")

	resp := srv.do(t, http.MethodPost, "/api/products", token, map[string]interface{}{"quantity": "-1", "sub_warehouse": "BODEGA"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp dto.ErrorResponse
	decode(t, resp, &errResp)
	assert.Equal(t, "VALIDATION", errResp.Code)
	for _, field := range []string{"code", "name", "quantity", "sub_warehouse", "unit"} {
		assert.Contains(t, errResp.Fields, field)
	}

	createProduct(t, srv, token, "P-001", "1", "SCPE")
	resp = srv.do(t, http.MethodPost, "/api/products", token, productBody("P-001", "1", "SCPE"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	decode(t, resp, &errResp)
	assert.Equal(t, "DUPLICATE_CODE", errResp.Code)

	req := strings.NewReader("{no es json")
	resp = srv.send(t, jsonRequest(http.MethodPost, "/api/products", req), token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProducts_ListaConBusquedaYAlertas(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "ana")
	createProduct(t, srv, token, "VAL-1", "5", "SCPE")
	createProduct(t, srv, token, "PER-2", "50", "SCPE")

	resp := srv.do(t, http.MethodGet, "/api/products?q=val", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ProductListResponse
	decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "VAL-1", list.Items[0].Code)
	require.Len(t, list.Alerts, 1)
	assert.True(t, list.Alerts[0].NeedsAlert)
}

func TestEmpleado_PermisosLimitados(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.register(t, "ana")
	employee := srv.register(t, "luis")
	p := createProduct(t, srv, admin, "P-001", "10", "SCPE")

	resp := srv.do(t, http.MethodPost, "/api/products", employee, productBody("P-002", "1", "SCPE"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/egresses", employee, egressBody(p.ID, "2"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var egress dto.EgressResponse
	decode(t, resp, &egress)

	for _, path := range []string{"/api/reports/low-stock", "/api/users", "/api/ledger/export", "/api/reports/inventory/export"} {
		resp = srv.do(t, http.MethodGet, path, employee, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}
	resp = srv.do(t, http.MethodDelete, "/api/egresses/"+egress.ID, employee, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/ledger", employee, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdjuntos_SoloEnPozo57(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "ana")
	img := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}

	fields := map[string]string{
		"code": "V-57", "name": "Válvula", "quantity": "10,5", "price": "2",
		"sub_warehouse": "POZO 57", "unit": "pieza",
	}
	resp := srv.multipart(t, http.MethodPost, "/api/products", token, fields, "imagen", "foto ingreso.png", img)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var pozo dto.ProductResponse
	decode(t, resp, &pozo)
	assert.True(t, pozo.Quantity.Equal(decimal.RequireFromString("10.5")))

	scpe := createProduct(t, srv, token, "S-1", "10", "SCPE")

	egressFields := func(productID string) map[string]string {
		return map[string]string{"product_id": productID, "quantity": "1", "requester_name": "Juan", "requester_code": "E-1"}
	}
	resp = srv.multipart(t, http.MethodPost, "/api/egresses", token, egressFields(pozo.ID), "imagen", "salida.jpg", img)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var withImage dto.EgressResponse
	decode(t, resp, &withImage)
	assert.True(t, strings.HasPrefix(withImage.Attachment, "uploads/"), withImage.Attachment)
	assert.True(t, strings.HasSuffix(withImage.Attachment, ".jpg"), withImage.Attachment)

	resp = srv.multipart(t, http.MethodPost, "/api/egresses", token, egressFields(scpe.ID), "imagen", "salida.jpg", img)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var withoutImage dto.EgressResponse
	decode(t, resp, &withoutImage)
	assert.Empty(t, withoutImage.Attachment)

	resp = srv.multipart(t, http.MethodPost, "/api/egresses", token,
		map[string]string{"product_id": scpe.ID, "quantity": "uno", "requester_name": "Juan", "requester_code": "E-1"}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImport_CSV(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "ana")
	createProduct(t, srv, token, "P-1", "1", "SCPE")

	csv := "Código;Nombre;Cantidad;Precio;Subalmacén;Unidad\n" +
		"P-1;Perno;10;1;SCPE;pieza\n" +
		"P-2;Tuerca;5;1,5;SCPE;pieza\n" +
		"P-3;Brida;x;2;SCPE;pieza\n"
	resp := srv.multipart(t, http.MethodPost, "/api/products/import", token, nil, "archivo", "carga.csv", []byte(csv))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.ImportResult
	decode(t, resp, &out)
	assert.Equal(t, 1, out.Imported)
	assert.Equal(t, 1, out.Skipped)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, 4, out.Errors[0].Line)

	resp = srv.multipart(t, http.MethodPost, "/api/products/import", token, map[string]string{"x": "y"}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReports_Exportacion(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "ana")
	p := createProduct(t, srv, token, "P-1", "20", "SCPE")
	resp := srv.do(t, http.MethodPost, "/api/egresses", token, egressBody(p.ID, "3"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/ledger/export", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Historial_Completo.xlsx")
	assert.True(t, bytes.HasPrefix([]byte(readBody(t, resp)), []byte("PK")))

	resp = srv.do(t, http.MethodGet, "/api/reports/inventory/export?format=pdf", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(readBody(t, resp), "%PDF"))

	resp = srv.do(t, http.MethodGet, "/api/reports/valuation/export?format=doc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/reports/no-existe/export", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/reports/egresses-by-requester", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var groups []dto.EgressGroup
	decode(t, resp, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, "Juan Pérez", groups[0].Key)
	assert.True(t, groups[0].TotalAmount.Equal(decimal.NewFromInt(15)))
}

func TestUsers_Administracion(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "ana")

	resp := srv.do(t, http.MethodPost, "/api/users", token, map[string]string{
		"username": "beto", "email": "beto@almacen.bo", "password": "secreto1", "role": "empleado",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/users", token, map[string]string{
		"username": "BETO2", "email": "BETO@almacen.bo", "password": "secreto1", "role": "empleado",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []dto.UserResponse
	decode(t, resp, &users)
	require.Len(t, users, 2)

	var anaID string
	for _, u := range users {
		if u.Username == "ana" {
			anaID = u.ID
		}
	}
	resp = srv.do(t, http.MethodDelete, "/api/users/"+anaID, token, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp dto.ErrorResponse
	decode(t, resp, &errResp)
	assert.Equal(t, "LAST_ADMIN", errResp.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
