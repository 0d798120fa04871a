package site

import "fmt"

// QuotaLedger enforces the hard byte budget for an account's files.
//
// Reserve is an advisory pre-flight check: it computes the total that would
// result from a mutation and rejects it before any disk write happens. The
// caller commits the returned total to the account record only after the
// filesystem write succeeds. Serialization of check-then-write is the
// service's job (per-account locks), not the ledger's.
type QuotaLedger struct {
	maxSpace int64
}

// NewQuotaLedger creates a ledger with the given budget in bytes.
func NewQuotaLedger(maxSpace int64) *QuotaLedger {
	return &QuotaLedger{maxSpace: maxSpace}
}

// MaxSpace returns the configured byte budget.
func (q *QuotaLedger) MaxSpace() int64 {
	return q.maxSpace
}

// Reserve computes used - replacing + incoming and returns the new total,
// or ErrQuotaExceeded if it would pass the budget. replacing is the size of
// a file being overwritten; its bytes are freed before the new ones count.
func (q *QuotaLedger) Reserve(used, incoming, replacing int64) (int64, error) {
	newTotal := used - replacing + incoming
	if newTotal > q.maxSpace {
		return 0, fmt.Errorf("%d of %d bytes used, %d more requested: %w",
			used, q.maxSpace, incoming-replacing, ErrQuotaExceeded)
	}
	return newTotal, nil
}
