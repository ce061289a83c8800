// Package health provides reusable health checks for event plugins.
//
// RateCheck turns a pair of counters into a status, and Combine folds several
// statuses into one. Unhealthy wins over degraded, which wins over healthy.
//
//	status := health.Combine(
//	    health.RateCheck("serialization failures", failed, processed, 0.01),
//	    health.RateCheck("events without timestamp", skipped, processed, 0.5),
//	)
//	if !status.IsHealthy() {
//	    log.Printf("%s: %v", status.Message, status.Details)
//	}
package health
