package domain_test

import (
	"testing"
	"time"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestDecideAlert(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	window := domain.DefaultCooldownWindow
	finding := domain.ChangeFinding{
		Kind: domain.FindingLowStock,
		Snapshot: domain.ProductSnapshot{
			ProductID: "P-1", Name: "Gadget", StockCount: 2,
		},
		Threshold: 10,
	}

	t.Run("NeverAlerted", func(t *testing.T) {
		d := domain.DecideAlert(finding, time.Time{}, now, window)

		assert.True(t, d.Eligible)
		assert.Equal(t, now, d.NewLastAlertTime)
	})

	t.Run("WithinWindow", func(t *testing.T) {
		lastAlert := now.Add(-window + time.Second)

		d := domain.DecideAlert(finding, lastAlert, now, window)

		assert.False(t, d.Eligible)
		assert.True(t, d.NewLastAlertTime.IsZero())
	})

	t.Run("ExactBoundary", func(t *testing.T) {
		lastAlert := now.Add(-window)

		d := domain.DecideAlert(finding, lastAlert, now, window)

		assert.True(t, d.Eligible)
	})

	t.Run("AfterWindow", func(t *testing.T) {
		lastAlert := now.Add(-window - time.Hour)

		d := domain.DecideAlert(finding, lastAlert, now, window)

		assert.True(t, d.Eligible)
		assert.Equal(t, now, d.NewLastAlertTime)
	})

	t.Run("SecondPrecision", func(t *testing.T) {
		wallClock := time.Date(2026, 8, 31, 12, 0, 0, 123456789, time.UTC)

		d := domain.DecideAlert(finding, time.Time{}, wallClock, window)

		assert.True(t, d.Eligible)
		assert.Equal(t, wallClock.Truncate(time.Second), d.NewLastAlertTime)
		assert.Zero(t, d.NewLastAlertTime.Nanosecond())
	})

	t.Run("Deterministic", func(t *testing.T) {
		lastAlert := now.Add(-time.Hour)

		d1 := domain.DecideAlert(finding, lastAlert, now, window)
		d2 := domain.DecideAlert(finding, lastAlert, now, window)

		assert.Equal(t, d1, d2)
	})
}
