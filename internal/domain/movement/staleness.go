// Package movement contiene los servicios de dominio puros sobre historiales de movimientos:
// compuerta de frescura, merge idempotente, análisis por antigüedad, hot score y reportes agregados.
package movement

import "time"

// MinSyncInterval tiempo mínimo entre dos sincronizaciones del mismo SKU.
const MinSyncInterval = 5 * time.Minute

// ShouldSync decide si vale la pena volver a sincronizar.
// true si force, si no hay sincronización previa, o si pasaron al menos MinSyncInterval.
func ShouldSync(lastSync *time.Time, force bool, now time.Time) bool {
	if force || lastSync == nil || lastSync.IsZero() {
		return true
	}
	return now.Sub(*lastSync) >= MinSyncInterval
}
