package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"tasklet/internal/config"
)

const logLevelEnvKey = "TASKLET_LOG_LEVEL"

// logLevel is shared by every handler so a redirect keeps the chosen level.
var logLevel = new(slog.LevelVar)

func configureLoggerForCLI(flagLevel, configLevel, logFormat string) (string, error) {
	envLevel := os.Getenv(logLevelEnvKey)
	rawLevel, source := selectedLogLevel(flagLevel, envLevel, configLevel)
	if err := configureDefaultLogger(rawLevel, logFormat, os.Stderr); err != nil {
		if source == "flag" {
			return "", fmt.Errorf("invalid --log-level %q", flagLevel)
		}
		_ = configureDefaultLogger("", logFormat, os.Stderr)
		switch source {
		case "env":
			return fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", logLevelEnvKey, envLevel, config.DefaultLogLevel), nil
		case "config":
			return fmt.Sprintf("warning: invalid log_level=%q; defaulting to %s", configLevel, config.DefaultLogLevel), nil
		default:
			return "", nil
		}
	}
	return "", nil
}

func selectedLogLevel(flagLevel, envLevel, configLevel string) (string, string) {
	if strings.TrimSpace(flagLevel) != "" {
		return flagLevel, "flag"
	}
	if strings.TrimSpace(envLevel) != "" {
		return envLevel, "env"
	}
	if strings.TrimSpace(configLevel) != "" {
		return configLevel, "config"
	}
	return "", "default"
}

func configureDefaultLogger(rawLevel, logFormat string, w io.Writer) error {
	level, err := parseLogLevel(rawLevel)
	if err != nil {
		return err
	}
	logLevel.Set(level)
	slog.SetDefault(newLogger(logFormat, w))
	return nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return slog.LevelInfo, nil
	}
	if strings.EqualFold(value, "warning") {
		value = "warn"
	}

	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func newLogger(logFormat string, w io.Writer) *slog.Logger {
	if logFormat == config.LogFormatPretty {
		handler := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(logLevel.Level()),
			ReportTimestamp: true,
			Prefix:          "tasklet",
		})
		return slog.New(handler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// redirectLogs points the default logger at a file, for commands that own
// the terminal. The returned func closes the file.
func redirectLogs(path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(newLogger(config.LogFormatText, f))
	return f.Close, nil
}
