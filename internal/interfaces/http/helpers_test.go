package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/excel"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almacen-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

// testServer aplicación completa sobre el store en memoria.
type testServer struct {
	app    *fiber.App
	store  *memory.Store
	authUC *auth.AuthUseCase
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Nop()
	store := memory.New()

	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	authUC := auth.NewAuthUseCase(store.Users(), store, memory.NewTokenDenylist(), auth.JWTConfig{
		Secret:     testJWTSecret,
		ExpMinutes: 60,
		Issuer:     "almacen-test",
	}, log)
	cfg := inventory.Config{
		DefaultMinStock:    decimal.NewFromInt(10),
		AttachmentLocation: entity.SubWarehousePozo57,
	}
	ledger := inventory.NewLedgerUseCase(store.Ingresses(), store.Egresses(), store.Products(), store.Users(), inventory.NewDisplay(4))
	reportUC := usecase.NewReportUseCase(store.Products(), store.Egresses(), store.Analytics(), ledger,
		map[string]usecase.ReportRenderer{
			usecase.FormatPDF:  pdf.NewReportRenderer("test"),
			usecase.FormatXLSX: excel.NewReportRenderer("test"),
		}, 10)

	app := apphttp.NewApp(apphttp.AppConfig{Name: "almacen-test", Env: "test"}, log)
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:         authUC,
		ProductUC:      usecase.NewProductUseCase(store.Products(), store.Egresses()),
		StockUC:        inventory.NewStockUseCase(store, files, cfg, log),
		ImportUC:       inventory.NewImportUseCase(store, excel.NewProductReader(), cfg, log),
		ReportUC:       reportUC,
		SubWarehouseUC: usecase.NewSubWarehouseUseCase(entity.SubWarehousePozo57),
		UserUC:         usecase.NewUserUseCase(store.Users(), store, log),
		LoginLimit:     1000,
	})
	return &testServer{app: app, store: store, authUC: authUC}
}

// register da de alta un usuario por la API y devuelve su token.
func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Username: username,
		Email:    username + "@almacen.bo",
		Password: "secreto1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, readBody(t, resp))
	return s.login(t, username)
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: "secreto1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	return out.Token
}

// do envía body como JSON (nil = sin cuerpo).
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return s.send(t, req, token)
}

// multipart envía fields y, si fileField no está vacío, un archivo.
func (s *testServer) multipart(t *testing.T, method, path, token string, fields map[string]string, fileField, fileName string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) *http.Response {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func jsonRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}
