package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.IngressRepository = (*IngressRepo)(nil)
	_ repository.EgressRepository  = (*EgressRepo)(nil)
)

const (
	ingressColumns = `id, product_id, quantity, attachment, user_id, created_at`
	egressColumns  = `id, product_id, quantity, requester_name, requester_code, unit_price, attachment, user_id, created_at`
)

// IngressRepo entradas de stock. El orden de inserción lo da la columna seq.
type IngressRepo struct {
	q Querier
}

// NewIngressRepository construye el adaptador de entradas. Pasar pool o tx (Querier).
func NewIngressRepository(q Querier) *IngressRepo {
	return &IngressRepo{q: q}
}

// Create persiste la entrada.
func (r *IngressRepo) Create(ctx context.Context, in *entity.Ingress) error {
	query := `INSERT INTO ingresses (` + ingressColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, in.ID, in.ProductID, in.Quantity, in.Attachment, in.UserID, in.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ingress: %w", err)
	}
	return nil
}

// List todas las entradas en orden de inserción.
func (r *IngressRepo) List(ctx context.Context) ([]*entity.Ingress, error) {
	return r.list(ctx, `SELECT `+ingressColumns+` FROM ingresses ORDER BY seq`)
}

// ListByProduct entradas de un producto en orden de inserción.
func (r *IngressRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Ingress, error) {
	if !validID(productID) {
		return []*entity.Ingress{}, nil
	}
	return r.list(ctx, `SELECT `+ingressColumns+` FROM ingresses WHERE product_id = $1 ORDER BY seq`, productID)
}

// DeleteByProduct borra las entradas del producto y devuelve cuántas eran.
func (r *IngressRepo) DeleteByProduct(ctx context.Context, productID string) (int64, error) {
	if !validID(productID) {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM ingresses WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete ingresses: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *IngressRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Ingress, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ingresses: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Ingress, 0)
	for rows.Next() {
		var in entity.Ingress
		if err := rows.Scan(&in.ID, &in.ProductID, &in.Quantity, &in.Attachment, &in.UserID, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ingress: %w", err)
		}
		in.CreatedAt = in.CreatedAt.UTC()
		list = append(list, &in)
	}
	return list, rows.Err()
}

// EgressRepo salidas de stock.
type EgressRepo struct {
	q Querier
}

// NewEgressRepository construye el adaptador de salidas. Pasar pool o tx (Querier).
func NewEgressRepository(q Querier) *EgressRepo {
	return &EgressRepo{q: q}
}

// Create persiste la salida.
func (r *EgressRepo) Create(ctx context.Context, e *entity.Egress) error {
	query := `INSERT INTO egresses (` + egressColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.Quantity, e.RequesterName, e.RequesterCode, e.UnitPrice, e.Attachment, e.UserID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert egress: %w", err)
	}
	return nil
}

// GetByID obtiene una salida por ID; nil si no existe.
func (r *EgressRepo) GetByID(ctx context.Context, id string) (*entity.Egress, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+egressColumns+` FROM egresses WHERE id = $1`, id)
}

// GetForUpdate lee la salida bloqueando la fila.
func (r *EgressRepo) GetForUpdate(ctx context.Context, id string) (*entity.Egress, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+egressColumns+` FROM egresses WHERE id = $1 FOR UPDATE`, id)
}

// Update reemplaza la salida. Conserva seq, es decir su posición en el Kardex.
func (r *EgressRepo) Update(ctx context.Context, e *entity.Egress) error {
	query := `
		UPDATE egresses SET product_id = $2, quantity = $3, requester_name = $4, requester_code = $5,
		       unit_price = $6, attachment = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.Quantity, e.RequesterName, e.RequesterCode, e.UnitPrice, e.Attachment,
	)
	if err != nil {
		return fmt.Errorf("update egress: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la salida.
func (r *EgressRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM egresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete egress: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List todas las salidas en orden de inserción.
func (r *EgressRepo) List(ctx context.Context) ([]*entity.Egress, error) {
	return r.list(ctx, `SELECT `+egressColumns+` FROM egresses ORDER BY seq`)
}

// ListByProduct salidas de un producto en orden de inserción.
func (r *EgressRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Egress, error) {
	if !validID(productID) {
		return []*entity.Egress{}, nil
	}
	return r.list(ctx, `SELECT `+egressColumns+` FROM egresses WHERE product_id = $1 ORDER BY seq`, productID)
}

// LockByProduct toma FOR UPDATE sobre las salidas del producto, en orden de id.
func (r *EgressRepo) LockByProduct(ctx context.Context, productID string) (int, error) {
	if !validID(productID) {
		return 0, nil
	}
	rows, err := r.q.Query(ctx, `SELECT id FROM egresses WHERE product_id = $1 ORDER BY id FOR UPDATE`, productID)
	if err != nil {
		return 0, fmt.Errorf("lock egresses: %w", err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("lock egresses: %w", err)
	}
	return n, nil
}

// DeleteByProduct borra las salidas del producto y devuelve cuántas eran.
func (r *EgressRepo) DeleteByProduct(ctx context.Context, productID string) (int64, error) {
	if !validID(productID) {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM egresses WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete egresses: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *EgressRepo) getOne(ctx context.Context, query string, id string) (*entity.Egress, error) {
	e, err := scanEgress(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get egress: %w", err)
	}
	return e, nil
}

func (r *EgressRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Egress, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list egresses: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Egress, 0)
	for rows.Next() {
		e, err := scanEgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan egress: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanEgress(row pgx.Row) (*entity.Egress, error) {
	var e entity.Egress
	err := row.Scan(
		&e.ID, &e.ProductID, &e.Quantity, &e.RequesterName, &e.RequesterCode,
		&e.UnitPrice, &e.Attachment, &e.UserID, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
