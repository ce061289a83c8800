package health

import (
	"fmt"

	"github.com/zero-day-ai/unduplicates/plugin"
)

// RateCheck compares the share of count in total against maxRate.
// It returns a degraded status when the share is above maxRate and a healthy
// status otherwise, including when total is zero.
//
// Example:
//
//	status := health.RateCheck("serialization failures", failed, processed, 0.01)
//	if status.IsDegraded() {
//	    log.Println(status.Message)
//	}
func RateCheck(name string, count, total int64, maxRate float64) plugin.HealthStatus {
	if total <= 0 {
		return plugin.Healthy(fmt.Sprintf("%s: no events", name), nil)
	}

	rate := float64(count) / float64(total)
	details := map[string]any{
		"check":    name,
		"count":    count,
		"total":    total,
		"rate":     rate,
		"max_rate": maxRate,
	}

	if rate > maxRate {
		return plugin.Degraded(
			fmt.Sprintf("%s: %d of %d (%.1f%%) above %.1f%%", name, count, total, rate*100, maxRate*100),
			details,
		)
	}

	return plugin.Healthy(fmt.Sprintf("%s: %d of %d", name, count, total), details)
}

// Combine aggregates multiple health checks into a single status.
// The result follows this priority:
//   - If any check is unhealthy, the result is unhealthy
//   - If any check is degraded (and none unhealthy), the result is degraded
//   - If all checks are healthy, the result is healthy
//
// Example:
//
//	status := health.Combine(
//	    health.RateCheck("serialization failures", failed, processed, 0.01),
//	    health.RateCheck("events without timestamp", skipped, processed, 0.5),
//	)
func Combine(checks ...plugin.HealthStatus) plugin.HealthStatus {
	if len(checks) == 0 {
		return plugin.Healthy("no checks provided", nil)
	}

	var unhealthyChecks []string
	var degradedChecks []string
	var healthyCount int

	for _, check := range checks {
		msg := check.Message
		if msg == "" {
			msg = "unnamed check"
		}

		switch check.Status {
		case plugin.StatusUnhealthy:
			unhealthyChecks = append(unhealthyChecks, msg)
		case plugin.StatusDegraded:
			degradedChecks = append(degradedChecks, msg)
		case plugin.StatusHealthy:
			healthyCount++
		}
	}

	if len(unhealthyChecks) > 0 {
		return plugin.Unhealthy(
			fmt.Sprintf("%d check(s) failed", len(unhealthyChecks)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthyChecks),
				"degraded":      len(degradedChecks),
				"healthy":       healthyCount,
				"failed_checks": unhealthyChecks,
			},
		)
	}

	if len(degradedChecks) > 0 {
		return plugin.Degraded(
			fmt.Sprintf("%d check(s) degraded", len(degradedChecks)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degradedChecks),
				"healthy":         healthyCount,
				"degraded_checks": degradedChecks,
			},
		)
	}

	return plugin.Healthy(fmt.Sprintf("all %d check(s) passed", len(checks)), nil)
}
