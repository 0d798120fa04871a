package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the configuration using struct tags plus the cross-field
// rules that tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if cfg.Database.Type == "sqlite" && cfg.Database.DataDir == "" {
		return fmt.Errorf("database: data_dir is required when type is sqlite")
	}
	if cfg.Screenshots.Type == "redis" && cfg.Screenshots.RedisAddr == "" {
		return fmt.Errorf("screenshots: redis_addr is required when type is redis")
	}
	if cfg.Screenshots.Type == "redis" && cfg.Screenshots.QueueKey == "" {
		return fmt.Errorf("screenshots: queue_key is required when type is redis")
	}
	if cfg.Network.Type == "denylist" && cfg.Network.DenylistPath == "" {
		return fmt.Errorf("network: denylist_path is required when type is denylist")
	}
	if cfg.Storage.Root == cfg.Storage.QuarantineRoot {
		return fmt.Errorf("storage: root and quarantine_root must differ")
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
