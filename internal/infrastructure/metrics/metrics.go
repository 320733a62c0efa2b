package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/portal-inventario/internal/application/ports"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus contadores del libro de movimientos y de la sincronización entre plantas.
type Prometheus struct {
	syncPasses   *prometheus.CounterVec
	syncUpserts  *prometheus.CounterVec
	syncDeletes  *prometheus.CounterVec
	syncSkipped  *prometheus.CounterVec
	syncNoops    *prometheus.CounterVec
	writes       *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	coverageHits *prometheus.GaugeVec
}

// New registra los colectores en reg.
func New(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		syncPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory", Subsystem: "sync", Name: "passes_total",
			Help: "Pasadas de sincronización por planta origen y destino.",
		}, []string{"origin", "target"}),
		syncUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory", Subsystem: "sync", Name: "upserts_total",
			Help: "Filas derivadas creadas o reemplazadas.",
		}, []string{"origin", "target"}),
		syncDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory", Subsystem: "sync", Name: "deletes_total",
			Help: "Filas derivadas eliminadas.",
		}, []string{"origin", "target"}),
		syncSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory", Subsystem: "sync", Name: "skipped_total",
			Help: "Movimientos origen omitidos por estar mal formados.",
		}, []string{"origin"}),
		syncNoops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory", Subsystem: "sync", Name: "noop_total",
			Help: "Pasadas sin cambios (no se escribió el destino).",
		}, []string{"origin", "target"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory", Subsystem: "ledger", Name: "writes_total",
			Help: "Movimientos aceptados por operación.",
		}, []string{"facility", "op"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory", Subsystem: "ledger", Name: "rejections_total",
			Help: "Movimientos rechazados por motivo.",
		}, []string{"facility", "reason"}),
		coverageHits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "inventory", Subsystem: "coverage", Name: "alerts",
			Help: "Productos en nivel EXHAUSTED o CRITICAL en la última clasificación.",
		}, []string{"facility"}),
	}
	reg.MustRegister(p.syncPasses, p.syncUpserts, p.syncDeletes, p.syncSkipped, p.syncNoops,
		p.writes, p.rejections, p.coverageHits)
	return p
}

// SyncPass registra el resultado de una pasada de sincronización.
func (p *Prometheus) SyncPass(origin, target string, upserts, deletes, skipped int) {
	p.syncPasses.WithLabelValues(origin, target).Inc()
	p.syncUpserts.WithLabelValues(origin, target).Add(float64(upserts))
	p.syncDeletes.WithLabelValues(origin, target).Add(float64(deletes))
	p.syncSkipped.WithLabelValues(origin).Add(float64(skipped))
	if upserts == 0 && deletes == 0 {
		p.syncNoops.WithLabelValues(origin, target).Inc()
	}
}

func (p *Prometheus) MovementWritten(facility, op string) {
	p.writes.WithLabelValues(facility, op).Inc()
}

func (p *Prometheus) MovementRejected(facility, reason string) {
	p.rejections.WithLabelValues(facility, reason).Inc()
}

func (p *Prometheus) CoverageAlerts(facility string, count int) {
	p.coverageHits.WithLabelValues(facility).Set(float64(count))
}
