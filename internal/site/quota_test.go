package site_test

import (
	"errors"
	"testing"

	"sitekeeper/internal/site"
)

func TestQuotaLedger_Reserve(t *testing.T) {
	ledger := site.NewQuotaLedger(1000)

	t.Run("accepts a write within budget", func(t *testing.T) {
		total, err := ledger.Reserve(400, 500, 0)
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if total != 900 {
			t.Errorf("Reserve() total = %d, want 900", total)
		}
	})

	t.Run("accepts a write that lands exactly on the budget", func(t *testing.T) {
		total, err := ledger.Reserve(400, 600, 0)
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if total != 1000 {
			t.Errorf("Reserve() total = %d, want 1000", total)
		}
	})

	t.Run("rejects a write past the budget", func(t *testing.T) {
		_, err := ledger.Reserve(400, 601, 0)
		if !errors.Is(err, site.ErrQuotaExceeded) {
			t.Errorf("Reserve() error = %v, want ErrQuotaExceeded", err)
		}
	})

	t.Run("frees the replaced size before counting the new one", func(t *testing.T) {
		// 950 used, overwriting a 300 byte file with 320 bytes nets +20.
		total, err := ledger.Reserve(950, 320, 300)
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if total != 970 {
			t.Errorf("Reserve() total = %d, want 970", total)
		}
	})

	t.Run("shrinking overwrite always fits", func(t *testing.T) {
		total, err := ledger.Reserve(1000, 100, 400)
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if total != 700 {
			t.Errorf("Reserve() total = %d, want 700", total)
		}
	})
}
