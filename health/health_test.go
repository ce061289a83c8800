package health

import (
	"fmt"
	"testing"

	"github.com/zero-day-ai/unduplicates/plugin"
)

func TestRateCheck(t *testing.T) {
	tests := []struct {
		name         string
		count, total int64
		maxRate      float64
		expectStatus string
	}{
		{"no events", 0, 0, 0.1, plugin.StatusHealthy},
		{"below", 1, 100, 0.05, plugin.StatusHealthy},
		{"at limit", 5, 100, 0.05, plugin.StatusHealthy},
		{"above", 6, 100, 0.05, plugin.StatusDegraded},
		{"zero tolerance", 1, 1000, 0, plugin.StatusDegraded},
		{"all", 3, 3, 0.5, plugin.StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := RateCheck("failures", tt.count, tt.total, tt.maxRate)

			if status.Status != tt.expectStatus {
				t.Errorf("expected status %s, got %s: %s", tt.expectStatus, status.Status, status.Message)
			}
			if status.Message == "" {
				t.Error("expected non-empty message")
			}
			if tt.total > 0 && status.Details["count"] != tt.count {
				t.Errorf("expected count %d in details, got %v", tt.count, status.Details["count"])
			}
		})
	}
}

func TestRateCheckMessage(t *testing.T) {
	status := RateCheck("serialization failures", 1, 4, 0.1)
	want := "serialization failures: 1 of 4 (25.0%) above 10.0%"
	if status.Message != want {
		t.Errorf("message = %q, want %q", status.Message, want)
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name         string
		checks       []plugin.HealthStatus
		expectStatus string
	}{
		{
			name: "all healthy",
			checks: []plugin.HealthStatus{
				plugin.Healthy("check 1", nil),
				plugin.Healthy("check 2", nil),
			},
			expectStatus: plugin.StatusHealthy,
		},
		{
			name: "one unhealthy",
			checks: []plugin.HealthStatus{
				plugin.Healthy("check 1", nil),
				plugin.Unhealthy("check 2 failed", nil),
			},
			expectStatus: plugin.StatusUnhealthy,
		},
		{
			name: "one degraded",
			checks: []plugin.HealthStatus{
				plugin.Healthy("check 1", nil),
				plugin.Degraded("check 2 degraded", nil),
			},
			expectStatus: plugin.StatusDegraded,
		},
		{
			name: "unhealthy and degraded",
			checks: []plugin.HealthStatus{
				plugin.Degraded("check 1 degraded", nil),
				plugin.Unhealthy("check 2 failed", nil),
			},
			expectStatus: plugin.StatusUnhealthy, // unhealthy takes precedence
		},
		{
			name:         "no checks",
			checks:       nil,
			expectStatus: plugin.StatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Combine(tt.checks...)

			if status.Status != tt.expectStatus {
				t.Errorf("expected status %s, got %s: %s", tt.expectStatus, status.Status, status.Message)
			}
			if status.Message == "" {
				t.Error("expected non-empty message")
			}
			if status.Status != plugin.StatusHealthy && status.Details == nil {
				t.Error("expected details for non-healthy status")
			}
		})
	}
}

func TestCombineUnnamedCheck(t *testing.T) {
	status := Combine(plugin.Degraded("", nil))

	names, ok := status.Details["degraded_checks"].([]string)
	if !ok || len(names) != 1 || names[0] != "unnamed check" {
		t.Errorf("unexpected degraded_checks: %v", status.Details["degraded_checks"])
	}
}

func ExampleCombine() {
	status := Combine(
		RateCheck("serialization failures", 0, 10, 0.01),
		RateCheck("events without timestamp", 8, 10, 0.5),
	)

	fmt.Println(status.Status, status.Message)
	// Output: degraded 1 check(s) degraded
}
