package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type LoggerConfig struct {
	Level              string                 `mapstructure:"level" json:"level,omitempty" validate:"oneof=debug info warn error"`
	Format             string                 `mapstructure:"format" json:"format,omitempty" validate:"oneof=json console"`
	OutputTarget       string                 `mapstructure:"output_target" json:"outputTarget,omitempty" validate:"oneof=stdout stderr file"`
	File               string                 `mapstructure:"file" json:"file,omitempty" validate:"required_if=OutputTarget file"`
	TimeField          string                 `mapstructure:"time_field" json:"timeField,omitempty"`
	TimeFormat         string                 `mapstructure:"time_format" json:"timeFormat,omitempty" validate:"oneof=rfc3339 rfc3339nano unix unix_ms"`
	ServiceName        string                 `mapstructure:"service_name" json:"serviceName,omitempty"`
	ServiceVersion     string                 `mapstructure:"service_version" json:"serviceVersion,omitempty"`
	Env                string                 `mapstructure:"env" json:"env,omitempty" validate:"oneof=dev staging prod"`
	WithCaller         bool                   `mapstructure:"with_caller" json:"withCaller,omitempty"`
	Stacktrace         bool                   `mapstructure:"stacktrace" json:"stacktrace,omitempty"`
	StacktraceMinLevel string                 `mapstructure:"stacktrace_min_level" json:"stacktraceMinLevel,omitempty" validate:"oneof=debug info warn error fatal panic"`
	Fields             map[string]interface{} `mapstructure:"fields" json:"fields,omitempty"`
}

// debugLogPath receives a full copy of the log in dev+debug mode.
const debugLogPath = "logs/debug.log"

func New(logg *LoggerConfig) (logger zerolog.Logger, err error) {
	logg.setDefaults()

	v := validator.New()
	if err = v.Struct(logg); err != nil {
		return logger, fmt.Errorf("logger config validation error: %w", err)
	}

	// apply time settings from config
	zerolog.TimestampFieldName = logg.TimeField
	zerolog.TimeFieldFormat = timeFieldFormat(logg.TimeFormat)

	base, err := openTarget(logg)
	if err != nil {
		return logger, err
	}

	var writer io.Writer = base
	if logg.Format == "console" {
		writer = zerolog.ConsoleWriter{
			Out:        base,
			NoColor:    logg.OutputTarget == "file",
			TimeFormat: zerolog.TimeFieldFormat,
		}
	}

	// development + debug: keep a full history next to the console,
	// but don't crash if the directory can't be created
	if logg.Env == "dev" && logg.Level == "debug" && logg.OutputTarget != "file" {
		if err := os.MkdirAll(filepath.Dir(debugLogPath), 0o755); err == nil {
			if file, ferr := os.OpenFile(debugLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666); ferr == nil {
				writer = zerolog.MultiLevelWriter(writer, file)
			}
		}
	}

	logger = zerolog.New(writer).
		With().
		Timestamp().
		Str("service", logg.ServiceName).
		Str("version", logg.ServiceVersion).
		Str("env", logg.Env).
		Logger()

	// add optional extras in a clean linear flow
	if logg.WithCaller {
		logger = logger.With().Caller().Logger()
	}
	if logg.Stacktrace {
		logger = logger.With().Stack().Logger()
	}
	if len(logg.Fields) > 0 {
		logger = logger.With().Fields(logg.Fields).Logger()
	}

	// set log level globally (important: must be after ParseLevel)
	level, err := zerolog.ParseLevel(logg.Level)
	if err != nil {
		return logger, err
	}
	zerolog.SetGlobalLevel(level)

	return logger, nil
}

func openTarget(logg *LoggerConfig) (io.Writer, error) {
	switch logg.OutputTarget {
	case "stderr":
		return os.Stderr, nil
	case "file":
		if err := os.MkdirAll(filepath.Dir(logg.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(logg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		return f, nil
	default:
		return os.Stdout, nil
	}
}

// timeFieldFormat translates the config names to zerolog layouts.
func timeFieldFormat(name string) string {
	switch name {
	case "rfc3339":
		return "2006-01-02T15:04:05Z07:00"
	case "unix":
		return zerolog.TimeFormatUnix
	case "unix_ms":
		return zerolog.TimeFormatUnixMs
	default:
		return "2006-01-02T15:04:05.999999999Z07:00"
	}
}

func (c *LoggerConfig) setDefaults() {
	// environment default
	if c.Env == "" {
		c.Env = "prod"
	}

	// level defaults depend on environment
	if c.Level == "" {
		if c.Env == "dev" {
			c.Level = "debug"
		} else {
			c.Level = "info"
		}
	}

	// format defaults
	if c.Format == "" {
		if c.Env == "dev" {
			c.Format = "console"
		} else {
			c.Format = "json"
		}
	}

	// output target default
	if c.OutputTarget == "" {
		c.OutputTarget = "stdout"
	}

	// time defaults
	if c.TimeField == "" {
		c.TimeField = "ts"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "rfc3339nano"
	}

	// caller & stacktrace defaults
	if !c.WithCaller && c.Env == "dev" {
		c.WithCaller = true
	}
	if !c.Stacktrace && c.Env != "dev" {
		c.Stacktrace = true
	}
	if c.StacktraceMinLevel == "" {
		c.StacktraceMinLevel = "error"
	}

	// service defaults
	if c.ServiceName == "" {
		c.ServiceName = "tracker-dashboard"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.1"
	}

	// ensure fields map is not nil
	if c.Fields == nil {
		c.Fields = make(map[string]interface{})
	}
}
