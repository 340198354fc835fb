//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

var admin = entity.Actor{Username: "ana", Role: entity.RoleAdmin}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newPool levanta un PostgreSQL efímero con las migraciones aplicadas.
func newPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("almacen_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	m, err := postgres.NewMigrator(pool, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return pool
}

func newStock(pool *pgxpool.Pool) *inventory.StockUseCase {
	cfg := inventory.Config{DefaultMinStock: d("10"), AttachmentLocation: entity.SubWarehousePozo57}
	return inventory.NewStockUseCase(postgres.NewTxRunner(pool), nil, cfg, logger.Nop())
}

func productReq(code, qty string) dto.ProductRequest {
	return dto.ProductRequest{
		Code:         code,
		Name:         "Producto " + code,
		Quantity:     d(qty),
		Price:        d("12.50"),
		SubWarehouse: string(entity.SubWarehouseSCPE),
		Unit:         "pieza",
	}
}

func TestPostgres_FlujoDeStock(t *testing.T) {
	pool := newPool(t)
	stock := newStock(pool)
	ctx := context.Background()

	p, err := stock.CreateProduct(ctx, admin, productReq("P-001", "100"), nil)
	require.NoError(t, err)

	_, err = stock.CreateProduct(ctx, admin, productReq("P-001", "5"), nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	e, err := stock.RegisterEgress(ctx, admin, dto.EgressRequest{
		ProductID: p.ID, Quantity: d("30"), RequesterName: "Juan", RequesterCode: "F-1",
	}, nil)
	require.NoError(t, err)
	assert.True(t, e.UnitPrice.Equal(d("12.5")))

	_, err = stock.RegisterEgress(ctx, admin, dto.EgressRequest{
		ProductID: p.ID, Quantity: d("120"), RequesterName: "Juan", RequesterCode: "F-1",
	}, nil)
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.Equal(d("70")))

	got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(d("70")))

	missing, err := postgres.NewProductRepository(pool).GetByID(ctx, "no-es-uuid")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, stock.DeleteProduct(ctx, admin, p.ID))
	ins, err := postgres.NewIngressRepository(pool).ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, ins)
}

func TestPostgres_SalidasConcurrentesNoDejanStockNegativo(t *testing.T) {
	pool := newPool(t)
	stock := newStock(pool)
	ctx := context.Background()

	p, err := stock.CreateProduct(ctx, admin, productReq("C-1", "10"), nil)
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := stock.RegisterEgress(ctx, admin, dto.EgressRequest{
				ProductID: p.ID, Quantity: d("1"), RequesterName: "Juan", RequesterCode: "F-1",
			}, nil)
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
}

func TestPostgres_BorrarUsuarioDejaMovimientosSinAtribucion(t *testing.T) {
	pool := newPool(t)
	stock := newStock(pool)
	users := postgres.NewUserRepository(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	u := &entity.User{
		ID: "8f8a4c2e-9b7d-4f0e-a1c3-2d5e6f7a8b9c", Username: "luis", Email: "luis@almacen.bo",
		PasswordHash: "x", Role: entity.RoleEmployee, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, users.Create(ctx, u))
	dup := *u
	dup.ID = "1b2c3d4e-5f60-4a1b-8c2d-3e4f5a6b7c8d"
	dup.Username = "otro"
	dup.Email = "LUIS@almacen.bo"
	assert.ErrorIs(t, users.Create(ctx, &dup), domain.ErrDuplicateUser)

	actor := entity.Actor{UserID: u.ID, Username: u.Username, Role: entity.RoleAdmin}
	p, err := stock.CreateProduct(ctx, actor, productReq("U-1", "3"), nil)
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, u.ID))

	ins, err := postgres.NewIngressRepository(pool).ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, ins, 1)
	assert.Nil(t, ins[0].UserID)
}

func TestPostgres_Analitica(t *testing.T) {
	pool := newPool(t)
	stock := newStock(pool)
	ctx := context.Background()

	a, err := stock.CreateProduct(ctx, admin, productReq("A-1", "50"), nil)
	require.NoError(t, err)
	b, err := stock.CreateProduct(ctx, admin, productReq("B-1", "50"), nil)
	require.NoError(t, err)
	for _, id := range []string{b.ID, a.ID} {
		_, err := stock.RegisterEgress(ctx, admin, dto.EgressRequest{
			ProductID: id, Quantity: d("5"), RequesterName: "Juan", RequesterCode: "F-1",
		}, nil)
		require.NoError(t, err)
	}

	analytics := postgres.NewAnalyticsRepository(pool)
	top, err := analytics.TopConsumed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "B-1", top[0].ProductCode, "empate: primera salida más antigua")

	val, err := analytics.ValuationBySubWarehouse(ctx)
	require.NoError(t, err)
	require.Len(t, val, 3)
	assert.Equal(t, entity.SubWarehouseSCPE, val[0].SubWarehouse)
	assert.Equal(t, 2, val[0].ProductCount)
	assert.True(t, val[0].TotalValue.Equal(d("1125")))
	assert.True(t, val[1].TotalValue.IsZero())
}

func TestPostgres_BorrarProductoConSalidasConcurrentesSinDeadlock(t *testing.T) {
	pool := newPool(t)
	stock := newStock(pool)
	ctx := context.Background()

	for round := 0; round < 10; round++ {
		p, err := stock.CreateProduct(ctx, admin, productReq("D-"+string(rune('A'+round)), "50"), nil)
		require.NoError(t, err)
		ids := make([]string, 0, 4)
		for i := 0; i < 4; i++ {
			e, err := stock.RegisterEgress(ctx, admin, dto.EgressRequest{
				ProductID: p.ID, Quantity: d("2"), RequesterName: "Juan", RequesterCode: "F-1",
			}, nil)
			require.NoError(t, err)
			ids = append(ids, e.ID)
		}

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			errs []error
		)
		record := func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
		for i, id := range ids {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				if i%2 == 0 {
					record(stock.DeleteEgress(ctx, admin, id))
					return
				}
				_, err := stock.EditEgress(ctx, admin, id, dto.EgressRequest{
					ProductID: p.ID, Quantity: d("3"), RequesterName: "Juan", RequesterCode: "F-1",
				}, nil)
				record(err)
			}(i, id)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(stock.DeleteProduct(ctx, admin, p.ID))
		}()
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrNotFound, "ronda %d", round)
				assert.False(t, errors.Is(err, domain.ErrOperationFailed), "ronda %d: %v", round, err)
			}
		}
		got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}
