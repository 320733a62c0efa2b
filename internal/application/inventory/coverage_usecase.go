package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/portal-inventario/internal/application/ports"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

// CoverageUseCase cobertura en meses y alertas de riesgo de suministro.
type CoverageUseCase struct {
	stock      *StockUseCase
	master     repository.MasterDataRepository
	classifier *inventory.CoverageClassifier
	notifier   ports.Notifier
	directory  ports.Directory
	metrics    ports.Metrics
	log        *logger.Logger

	mu        sync.Mutex
	lastAlert map[entity.Facility]string
}

// NewCoverageUseCase construye el caso de uso. metrics puede ser nil.
func NewCoverageUseCase(
	stock *StockUseCase,
	master repository.MasterDataRepository,
	classifier *inventory.CoverageClassifier,
	notifier ports.Notifier,
	directory ports.Directory,
	metrics ports.Metrics,
	log *logger.Logger,
) *CoverageUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &CoverageUseCase{
		stock:      stock,
		master:     master,
		classifier: classifier,
		notifier:   notifier,
		directory:  directory,
		metrics:    metrics,
		log:        log,
		lastAlert:  make(map[entity.Facility]string),
	}
}

// Classify calcula las filas de cobertura de la planta, por producto o por lote.
func (uc *CoverageUseCase) Classify(ctx context.Context, facility entity.Facility, byLot bool, cutoff *time.Time) ([]entity.CoverageRow, error) {
	p, err := uc.stock.Balances(ctx, facility, inventory.StockFilter{Cutoff: cutoff})
	if err != nil {
		return nil, err
	}
	rates, err := uc.master.ConsumptionRates(ctx, facility)
	if err != nil {
		return nil, err
	}
	return uc.classifier.Classify(p.Balances, rates, byLot), nil
}

// PublishAlerts clasifica la planta y avisa a los aprobadores de los productos EXHAUSTED o
// CRITICAL. Solo se notifica cuando el conjunto de alertas cambia respecto a la pasada anterior.
func (uc *CoverageUseCase) PublishAlerts(ctx context.Context, facility entity.Facility) ([]entity.CoverageRow, error) {
	rows, err := uc.Classify(ctx, facility, false, nil)
	if err != nil {
		return nil, err
	}
	alerts := inventory.Alerts(rows)
	uc.metrics.CoverageAlerts(string(facility), len(alerts))

	sig := alertSignature(alerts)
	uc.mu.Lock()
	unchanged := uc.lastAlert[facility] == sig
	uc.lastAlert[facility] = sig
	uc.mu.Unlock()
	if unchanged || len(alerts) == 0 || uc.notifier == nil || uc.directory == nil {
		return alerts, nil
	}

	approvers, err := uc.directory.Approvers(ctx)
	if err != nil {
		return alerts, err
	}
	for _, a := range alerts {
		msg := fmt.Sprintf("%s en %s: %s (stock %s, %s meses de cobertura)",
			a.RiskTier, facility, a.Product, a.StockBalance.String(), a.CoverageMonths.String())
		for _, id := range approvers {
			if err := uc.notifier.Notify(ctx, id, msg, ports.NotifyCoverageAlert); err != nil {
				uc.log.Warn().Err(err).Str("user_id", id).Msg("no se pudo enviar la alerta de cobertura")
			}
		}
	}
	uc.log.Info().Str("facility", string(facility)).Int("alerts", len(alerts)).Msg("alertas de cobertura publicadas")
	return alerts, nil
}

func alertSignature(rows []entity.CoverageRow) string {
	parts := make([]string, 0, len(rows))
	for _, r := range rows {
		parts = append(parts, r.Product+"|"+string(r.RiskTier))
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}
