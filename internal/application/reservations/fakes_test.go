package reservations_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/revestimientos-api/internal/domain"
	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria de los puertos de persistencia. Un único mutex por store
// hace atómico cada método, igual que una transacción corta de Postgres: el
// chequeo de disponibilidad y la inserción de la reserva corren bajo el mismo
// lock, que es exactamente lo que garantiza el SELECT FOR UPDATE real.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu           sync.Mutex
	lots         map[string]*entity.Lot
	reservations map[string]*entity.Reservation
	quotes       map[string]*entity.Quote
	orders       map[string]*entity.Order
	movements    []*entity.StockMovement
	products     map[string]*entity.Product
	quoteSeq     int
	orderSeq     int
}

func newMemStore() *memStore {
	return &memStore{
		lots:         make(map[string]*entity.Lot),
		reservations: make(map[string]*entity.Reservation),
		quotes:       make(map[string]*entity.Quote),
		orders:       make(map[string]*entity.Order),
		products:     make(map[string]*entity.Product),
	}
}

// availableLocked calcula en mano − Σ reservas ACTIVAS del lote.
// Requiere el mutex tomado.
func (s *memStore) availableLocked(lotID string) int {
	lot, ok := s.lots[lotID]
	if !ok {
		return 0
	}
	reserved := 0
	for _, r := range s.reservations {
		if r.LotID == lotID && r.Status == entity.ReservationActive {
			reserved += r.Quantity
		}
	}
	return lot.OnHand - reserved
}

// activeSum suma las reservas activas de un ítem (para aserciones).
func (s *memStore) activeSum(quoteItemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for _, r := range s.reservations {
		if r.QuoteItemID == quoteItemID && r.Status == entity.ReservationActive {
			sum += r.Quantity
		}
	}
	return sum
}

// activeSumLot suma las reservas activas sobre un lote (para aserciones).
func (s *memStore) activeSumLot(lotID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for _, r := range s.reservations {
		if r.LotID == lotID && r.Status == entity.ReservationActive {
			sum += r.Quantity
		}
	}
	return sum
}

// ── LotRepository ─────────────────────────────────────────────────────────────

type memLotRepo struct{ s *memStore }

func (m *memLotRepo) Get(companyID, lotID string) (*entity.Lot, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	lot, ok := m.s.lots[lotID]
	if !ok || lot.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	cp := *lot
	return &cp, nil
}

func (m *memLotRepo) Create(lot *entity.Lot) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *lot
	m.s.lots[lot.ID] = &cp
	return nil
}

func (m *memLotRepo) ListAvailabilityByProduct(companyID, productID string) ([]*entity.LotAvailability, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.LotAvailability
	for _, lot := range sortedLots(m.s.lots) {
		if lot.CompanyID != companyID || lot.ProductID != productID || lot.OnHand <= 0 {
			continue
		}
		avail := m.s.availableLocked(lot.ID)
		out = append(out, &entity.LotAvailability{
			LotID:     lot.ID,
			LotNumber: lot.LotNumber,
			OnHand:    lot.OnHand,
			Reserved:  lot.OnHand - avail,
			Available: avail,
		})
	}
	return out, nil
}

func (m *memLotRepo) GetAvailabilityForUpdate(companyID, lotID string) (*entity.LotAvailability, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	lot, ok := m.s.lots[lotID]
	if !ok || lot.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	avail := m.s.availableLocked(lotID)
	return &entity.LotAvailability{
		LotID:     lot.ID,
		LotNumber: lot.LotNumber,
		OnHand:    lot.OnHand,
		Reserved:  lot.OnHand - avail,
		Available: avail,
	}, nil
}

func (m *memLotRepo) ListForExit(companyID, productID string) ([]*entity.Lot, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Lot
	for _, lot := range sortedLots(m.s.lots) {
		if lot.CompanyID != companyID || lot.ProductID != productID || lot.OnHand <= 0 {
			continue
		}
		cp := *lot
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memLotRepo) DecrementOnHand(companyID, lotID string, qty int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	lot, ok := m.s.lots[lotID]
	if !ok || lot.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if qty > lot.OnHand {
		return domain.ErrInsufficientPhysicalStock
	}
	lot.OnHand -= qty
	return nil
}

// sortedLots ordena por vencimiento ascendente (sin fecha al final), ID desempata.
func sortedLots(lots map[string]*entity.Lot) []*entity.Lot {
	out := make([]*entity.Lot, 0, len(lots))
	for _, lot := range lots {
		out = append(out, lot)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ExpirationDate, out[j].ExpirationDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ── ReservationRepository ─────────────────────────────────────────────────────

type memReservationRepo struct{ s *memStore }

func (m *memReservationRepo) Create(res *entity.Reservation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.lots[res.LotID]; !ok {
		return domain.ErrNotFound
	}
	if res.Quantity > m.s.availableLocked(res.LotID) {
		return domain.ErrOverReservation
	}
	cp := *res
	m.s.reservations[res.ID] = &cp
	return nil
}

func (m *memReservationRepo) Cancel(companyID, reservationID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	res, ok := m.s.reservations[reservationID]
	if !ok || res.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if res.Status != entity.ReservationActive {
		return nil
	}
	res.Status = entity.ReservationCancelled
	res.UpdatedAt = time.Now()
	return nil
}

func (m *memReservationRepo) ReduceQuantity(companyID, reservationID string, newQty int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	res, ok := m.s.reservations[reservationID]
	if !ok || res.CompanyID != companyID || res.Status != entity.ReservationActive {
		return domain.ErrNotFound
	}
	if newQty < 0 || newQty > res.Quantity {
		return domain.ErrInvalidInput
	}
	res.Quantity = newQty
	if newQty == 0 {
		res.Status = entity.ReservationCancelled
	}
	res.UpdatedAt = time.Now()
	return nil
}

func (m *memReservationRepo) ConsumeForOrder(companyID, orderID, lotID string, qty int) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var actives []*entity.Reservation
	for _, r := range m.s.reservations {
		if r.CompanyID == companyID && r.OrderID == orderID && r.LotID == lotID &&
			r.Status == entity.ReservationActive {
			actives = append(actives, r)
		}
	}
	sort.Slice(actives, func(i, j int) bool {
		if actives[i].Quantity != actives[j].Quantity {
			return actives[i].Quantity < actives[j].Quantity
		}
		return actives[i].ID < actives[j].ID
	})

	consumed := 0
	remaining := qty
	for _, r := range actives {
		if remaining <= 0 {
			break
		}
		if r.Quantity <= remaining {
			remaining -= r.Quantity
			consumed += r.Quantity
			r.Quantity = 0
			r.Status = entity.ReservationConsumed
		} else {
			r.Quantity -= remaining
			consumed += remaining
			remaining = 0
		}
		r.UpdatedAt = time.Now()
	}
	return consumed, nil
}

func (m *memReservationRepo) TransferToOrder(companyID, quoteID, orderID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var count int64
	for _, r := range m.s.reservations {
		if r.CompanyID == companyID && r.QuoteID == quoteID && r.Status == entity.ReservationActive {
			r.OrderID = orderID
			r.Type = entity.ReservationTypePedido
			r.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

func (m *memReservationRepo) ExpireOlderThan(companyID string, now time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var count int64
	for _, r := range m.s.reservations {
		if r.CompanyID == companyID && r.Status == entity.ReservationActive && r.ExpiresAt.Before(now) {
			r.Status = entity.ReservationExpired
			r.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

func (m *memReservationRepo) FindActiveByItem(companyID, quoteItemID string) ([]*entity.Reservation, error) {
	return m.findActive(func(r *entity.Reservation) bool {
		return r.CompanyID == companyID && r.QuoteItemID == quoteItemID
	})
}

func (m *memReservationRepo) FindActiveByQuote(companyID, quoteID string) ([]*entity.Reservation, error) {
	return m.findActive(func(r *entity.Reservation) bool {
		return r.CompanyID == companyID && r.QuoteID == quoteID
	})
}

func (m *memReservationRepo) FindActiveByOrder(companyID, orderID string) ([]*entity.Reservation, error) {
	return m.findActive(func(r *entity.Reservation) bool {
		return r.CompanyID == companyID && r.OrderID == orderID
	})
}

func (m *memReservationRepo) findActive(match func(*entity.Reservation) bool) ([]*entity.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Reservation
	for _, r := range m.s.reservations {
		if r.Status == entity.ReservationActive && match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── QuoteRepository / OrderRepository ─────────────────────────────────────────

type memQuoteRepo struct{ s *memStore }

func (m *memQuoteRepo) Create(quote *entity.Quote) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.quotes[quote.ID] = quote
	return nil
}

func (m *memQuoteRepo) Get(companyID, quoteID string) (*entity.Quote, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	q, ok := m.s.quotes[quoteID]
	if !ok || q.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return q, nil
}

func (m *memQuoteRepo) List(companyID, status string) ([]*entity.Quote, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Quote
	for _, q := range m.s.quotes {
		if q.CompanyID == companyID && (status == "" || q.Status == status) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *memQuoteRepo) NextNumber(companyID string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.quoteSeq++
	return m.s.quoteSeq, nil
}

func (m *memQuoteRepo) UpdateStatus(companyID, quoteID, status string, at time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	q, ok := m.s.quotes[quoteID]
	if !ok || q.CompanyID != companyID {
		return domain.ErrNotFound
	}
	q.Status = status
	return nil
}

func (m *memQuoteRepo) UpdateTotals(quote *entity.Quote) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.quotes[quote.ID] = quote
	return nil
}

func (m *memQuoteRepo) Delete(companyID, quoteID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.quotes, quoteID)
	return nil
}

func (m *memQuoteRepo) AddItem(item *entity.QuoteItem) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	q, ok := m.s.quotes[item.QuoteID]
	if !ok {
		return domain.ErrNotFound
	}
	q.Items = append(q.Items, item)
	return nil
}

func (m *memQuoteRepo) GetItem(companyID, itemID string) (*entity.QuoteItem, *entity.Quote, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, q := range m.s.quotes {
		if q.CompanyID != companyID {
			continue
		}
		for _, it := range q.Items {
			if it.ID == itemID {
				return it, q, nil
			}
		}
	}
	return nil, nil, domain.ErrNotFound
}

func (m *memQuoteRepo) UpdateItem(item *entity.QuoteItem) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	q, ok := m.s.quotes[item.QuoteID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, it := range q.Items {
		if it.ID == item.ID {
			q.Items[i] = item
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memQuoteRepo) DeleteItem(companyID, itemID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, q := range m.s.quotes {
		if q.CompanyID != companyID {
			continue
		}
		for i, it := range q.Items {
			if it.ID == itemID {
				q.Items = append(q.Items[:i], q.Items[i+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

type memOrderRepo struct{ s *memStore }

func (m *memOrderRepo) Create(order *entity.Order) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.orders[order.ID] = order
	return nil
}

func (m *memOrderRepo) Get(companyID, orderID string) (*entity.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[orderID]
	if !ok || o.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (m *memOrderRepo) NextNumber(companyID string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.orderSeq++
	return m.s.orderSeq, nil
}

func (m *memOrderRepo) UpdateStatus(companyID, orderID, status string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[orderID]
	if !ok || o.CompanyID != companyID {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

// ── ProductRepository / StockMovementRepository ───────────────────────────────

type memProductRepo struct{ s *memStore }

func (m *memProductRepo) Get(companyID, productID string) (*entity.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProductRepo) Create(product *entity.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *product
	m.s.products[product.ID] = &cp
	return nil
}

type memMovementRepo struct{ s *memStore }

func (m *memMovementRepo) Create(mov *entity.StockMovement) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *mov
	m.s.movements = append(m.s.movements, &cp)
	return nil
}

func (m *memMovementRepo) ListByProduct(companyID, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.StockMovement
	for _, mov := range m.s.movements {
		if mov.CompanyID == companyID && mov.ProductID == productID {
			cp := *mov
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// memTxRunner invoca la función con los repos en memoria. Cada método de repo
// es atómico por el mutex del store, suficiente para estos tests.
type memTxRunner struct{ s *memStore }

func (t *memTxRunner) Run(ctx context.Context, fn func(
	repository.LotRepository,
	repository.ReservationRepository,
	repository.StockMovementRepository,
) error) error {
	return fn(&memLotRepo{t.s}, &memReservationRepo{t.s}, &memMovementRepo{t.s})
}

func (t *memTxRunner) RunDocs(ctx context.Context, fn func(
	repository.LotRepository,
	repository.ReservationRepository,
	repository.StockMovementRepository,
	repository.QuoteRepository,
	repository.OrderRepository,
) error) error {
	return fn(&memLotRepo{t.s}, &memReservationRepo{t.s}, &memMovementRepo{t.s}, &memQuoteRepo{t.s}, &memOrderRepo{t.s})
}
