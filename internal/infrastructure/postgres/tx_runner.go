package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/revestimientos-api/internal/application/reservations"
	"github.com/jhoicas/revestimientos-api/internal/application/stock"
	"github.com/jhoicas/revestimientos-api/internal/domain"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
)

// Ensure TxRunner implements reservations.TxRunner and stock.TxRunner.
var _ reservations.TxRunner = (*TxRunner)(nil)
var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Las fallas de serialización y los deadlocks se traducen a
// domain.ErrConcurrencyConflict para que el caller decida si reintenta.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	resRepo repository.ReservationRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.inTx(ctx, func(tx Querier) error {
		return fn(NewLotRepository(tx), NewReservationRepository(tx), NewStockMovementRepository(tx))
	})
}

// RunDocs inicia una transacción con los repos de documentos además de los de
// stock (conversión cotización → pedido, edición de ítems).
func (r *TxRunner) RunDocs(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	resRepo repository.ReservationRepository,
	movRepo repository.StockMovementRepository,
	quoteRepo repository.QuoteRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return r.inTx(ctx, func(tx Querier) error {
		return fn(
			NewLotRepository(tx),
			NewReservationRepository(tx),
			NewStockMovementRepository(tx),
			NewQuoteRepository(tx),
			NewOrderRepository(tx),
		)
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		if isSerializationConflict(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationConflict(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
