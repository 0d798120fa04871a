package testutil

import "sync"

// RecorderPolicy records every address handed to BlockIP.
type RecorderPolicy struct {
	mu      sync.Mutex
	blocked []string

	// Err, when set, is returned by every BlockIP call.
	Err error
}

func NewRecorderPolicy() *RecorderPolicy {
	return &RecorderPolicy{}
}

func (p *RecorderPolicy) BlockIP(address string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.blocked = append(p.blocked, address)
	return nil
}

// Blocked returns the addresses blocked so far, in order.
func (p *RecorderPolicy) Blocked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.blocked...)
}
