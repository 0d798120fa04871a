package netpolicy

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"sitekeeper/internal/site"
)

// DenylistFile blocks addresses by appending them to a denylist file that
// the firewall or reverse proxy layer consumes. This replaces shelling out
// to the firewall tool directly; the storage process never spawns anything.
type DenylistFile struct {
	path string
}

// NewDenylistFile creates the denylist's parent directory if needed.
func NewDenylistFile(path string) (*DenylistFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating denylist directory: %w", err)
	}
	return &DenylistFile{path: path}, nil
}

// BlockIP appends the address to the denylist. Re-blocking an address that
// is already listed is a no-op.
func (d *DenylistFile) BlockIP(address string) error {
	if net.ParseIP(address) == nil {
		return fmt.Errorf("invalid IP address: %q", address)
	}

	listed, err := d.contains(address)
	if err != nil {
		return err
	}
	if listed {
		return nil
	}

	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening denylist: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, address); err != nil {
		return fmt.Errorf("writing denylist entry: %w", err)
	}
	return nil
}

func (d *DenylistFile) contains(address string) (bool, error) {
	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading denylist: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if scanner.Text() == address {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// NopPolicy ignores block requests. Use when no network enforcement layer
// is wired up.
type NopPolicy struct{}

func NewNopPolicy() *NopPolicy { return &NopPolicy{} }

func (*NopPolicy) BlockIP(string) error { return nil }

// Compile-time checks
var (
	_ site.NetworkPolicy = (*DenylistFile)(nil)
	_ site.NetworkPolicy = (*NopPolicy)(nil)
)
