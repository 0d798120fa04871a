package site

// NetworkPolicy blocks network addresses at the edge. Banning an account
// blocks the address it registered from; how the block is enforced (firewall
// rules, a reverse-proxy denylist) is the implementation's business, keeping
// the storage core free of process-spawning side effects.
type NetworkPolicy interface {
	BlockIP(address string) error
}
