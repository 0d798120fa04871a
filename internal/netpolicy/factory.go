package netpolicy

import (
	"fmt"

	"sitekeeper/internal/config"
	"sitekeeper/internal/site"
)

// NewPolicyFromConfig creates a network policy based on the config type.
func NewPolicyFromConfig(cfg config.NetworkPolicyConfig) (site.NetworkPolicy, error) {
	switch cfg.Type {
	case "denylist":
		if cfg.DenylistPath == "" {
			return nil, fmt.Errorf("denylist_path required for denylist network policy")
		}
		return NewDenylistFile(cfg.DenylistPath)
	case "none":
		return NewNopPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown network policy type: %s", cfg.Type)
	}
}
