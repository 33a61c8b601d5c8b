package reservations

import (
	"context"
	"time"

	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
	"github.com/jhoicas/revestimientos-api/pkg/logger"
)

// ExpireUseCase marca como EXPIRED las reservas activas vencidas.
type ExpireUseCase struct {
	resRepo repository.ReservationRepository
	log     *logger.Logger
}

// NewExpireUseCase construye el caso de uso con un repositorio
// ligado al pool (no necesita transacción: el UPDATE es atómico).
func NewExpireUseCase(resRepo repository.ReservationRepository, log *logger.Logger) *ExpireUseCase {
	return &ExpireUseCase{resRepo: resRepo, log: log}
}

// ExpireStale expira todas las reservas activas con expires_at anterior a now.
// Es idempotente: una segunda pasada no encuentra nada que expirar.
func (uc *ExpireUseCase) ExpireStale(ctx context.Context, companyID string, now time.Time) (int64, error) {
	count, err := uc.resRepo.ExpireOlderThan(companyID, now)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		uc.log.Info().
			Str("company_id", companyID).
			Int64("expired", count).
			Msg("reservas expiradas")
	}
	return count, nil
}
