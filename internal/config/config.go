package config

import (
	"time"

	"github.com/maxviazov/tracker-dashboard/internal/logger"
)

type Config struct {
	Logger  logger.LoggerConfig `mapstructure:"logger" validate:"-"` // validated by logger.New after defaults
	API     APIConfig           `mapstructure:"api"`
	View    ViewConfig          `mapstructure:"view"`
	Sandbox SandboxConfig       `mapstructure:"sandbox"`
}

// APIConfig points the dashboard at the tracker backend.
// Email and Password are optional; when both are set the TUI logs in on start.
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Email    string        `mapstructure:"email"`
	Password string        `mapstructure:"password"`
}

// ViewConfig tunes the paged table views.
type ViewConfig struct {
	PageLimit    int           `mapstructure:"page_limit" validate:"gte=1,lte=100"`
	RefreshDelay time.Duration `mapstructure:"refresh_delay" validate:"gte=0"`
}

// SandboxConfig configures the in-memory backend used for development.
type SandboxConfig struct {
	Addr          string `mapstructure:"addr" validate:"required"`
	JWTSecret     string `mapstructure:"jwt_secret" validate:"required,min=8"`
	AdminName     string `mapstructure:"admin_name"`
	AdminEmail    string `mapstructure:"admin_email" validate:"required,email"`
	AdminPassword string `mapstructure:"admin_password" validate:"required"`
	SeedDemo      bool   `mapstructure:"seed_demo"`
}
