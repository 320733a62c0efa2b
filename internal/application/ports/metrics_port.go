package ports

// Metrics puerto de instrumentación de la escritura del libro y la sincronización.
type Metrics interface {
	SyncPass(origin, target string, upserts, deletes, skipped int)
	MovementWritten(facility, op string)
	MovementRejected(facility, reason string)
	CoverageAlerts(facility string, count int)
}

// NopMetrics descarta todas las observaciones.
type NopMetrics struct{}

func (NopMetrics) SyncPass(string, string, int, int, int) {}
func (NopMetrics) MovementWritten(string, string)         {}
func (NopMetrics) MovementRejected(string, string)        {}
func (NopMetrics) CoverageAlerts(string, int)             {}
