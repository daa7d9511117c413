package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:5010")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("view.page_limit", 5)
	v.SetDefault("view.refresh_delay", 350*time.Millisecond)
	v.SetDefault("sandbox.addr", ":5010")
	v.SetDefault("sandbox.jwt_secret", "tracker-dashboard-dev-secret")
	v.SetDefault("sandbox.admin_name", "Admin")
	v.SetDefault("sandbox.admin_email", "admin@example.com")
	v.SetDefault("sandbox.admin_password", "admin")
	v.SetDefault("sandbox.seed_demo", true)

	// register logger keys so APP_LOGGER_* env vars are picked up without a file
	for _, key := range []string{"level", "format", "output_target", "file", "env", "service_name"} {
		v.SetDefault("logger."+key, "")
	}
}

// Load reads the config file at path (optional when empty) and applies APP_* env overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("invalid config: %s", verrs.Error())
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
