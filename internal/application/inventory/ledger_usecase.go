package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// DisplayLayout formato de fecha y hora en Kardex y reportes (DD/MM/YYYY HH:MM).
const DisplayLayout = "02/01/2006 15:04"

const (
	unattributedActor = "Sistema (Registro Histórico)"
	ingressDetail     = "Compra / Actualización"
	egressDetail      = "Retirado por: %s"
)

// Display convierte instantes UTC a la hora local de presentación con un desfase fijo (sin DST).
type Display struct {
	Offset time.Duration
}

// NewDisplay desfase en horas a restar (Bolivia = 4).
func NewDisplay(offsetHours int) Display {
	return Display{Offset: time.Duration(offsetHours) * time.Hour}
}

// Local aplica el desfase.
func (d Display) Local(t time.Time) time.Time {
	return t.UTC().Add(-d.Offset)
}

// Format aplica el desfase y formatea con DisplayLayout.
func (d Display) Format(t time.Time) string {
	return d.Local(t).Format(DisplayLayout)
}

// LedgerUseCase reconstruye el Kardex uniendo ingresos y salidas. Es de solo lectura y
// se recalcula en cada llamada.
type LedgerUseCase struct {
	ingressRepo repository.IngressRepository
	egressRepo  repository.EgressRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	display     Display
}

// NewLedgerUseCase construye el caso de uso del Kardex.
func NewLedgerUseCase(
	ingressRepo repository.IngressRepository,
	egressRepo repository.EgressRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	display Display,
) *LedgerUseCase {
	return &LedgerUseCase{
		ingressRepo: ingressRepo,
		egressRepo:  egressRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		display:     display,
	}
}

// Display devuelve el conversor de hora usado por el Kardex.
func (uc *LedgerUseCase) Display() Display {
	return uc.display
}

// Movements devuelve todos los movimientos del más reciente al más antiguo.
// Con igual fecha se conserva el orden de inserción (ingresos antes que salidas).
func (uc *LedgerUseCase) Movements(ctx context.Context) ([]entity.Movement, error) {
	var (
		ingresses []*entity.Ingress
		egresses  []*entity.Egress
		products  []*entity.Product
		users     []*entity.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ingresses, err = uc.ingressRepo.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		egresses, err = uc.egressRepo.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = uc.productRepo.List(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		users, err = uc.userRepo.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("kardex: %w", err)
	}

	productByID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	userByID := make(map[string]*entity.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	movements := make([]entity.Movement, 0, len(ingresses)+len(egresses))
	for _, in := range ingresses {
		m := entity.Movement{
			ID:        in.ID,
			Type:      entity.MovementTypeIngress,
			Timestamp: uc.display.Local(in.CreatedAt),
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Actor:     actorDisplay(in.UserID, userByID),
			Detail:    ingressDetail,
		}
		fillProduct(&m, productByID[in.ProductID])
		movements = append(movements, m)
	}
	for _, e := range egresses {
		m := entity.Movement{
			ID:        e.ID,
			Type:      entity.MovementTypeEgress,
			Timestamp: uc.display.Local(e.CreatedAt),
			ProductID: e.ProductID,
			Quantity:  e.Quantity,
			Actor:     actorDisplay(e.UserID, userByID),
			Detail:    fmt.Sprintf(egressDetail, e.RequesterName),
		}
		fillProduct(&m, productByID[e.ProductID])
		movements = append(movements, m)
	}

	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].Timestamp.After(movements[j].Timestamp)
	})
	return movements, nil
}

func fillProduct(m *entity.Movement, p *entity.Product) {
	if p == nil {
		return
	}
	m.ProductCode = p.Code
	m.ProductName = p.Name
}

// actorDisplay "{username} ({rol})" o el texto de registro histórico si no hay usuario.
func actorDisplay(userID *string, users map[string]*entity.User) string {
	if userID == nil {
		return unattributedActor
	}
	u, ok := users[*userID]
	if !ok {
		return unattributedActor
	}
	return fmt.Sprintf("%s (%s)", u.Username, u.Role.Label())
}
