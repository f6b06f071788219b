package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}

// parseLevel converts a string log level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup builds the process logger from config: colored console output, a
// session log file under logsDir, and a GELF writer when graylog is
// enabled. The returned close function flushes and closes the log file.
func Setup(appName string) (zerolog.Logger, func(), error) {
	zerolog.SetGlobalLevel(parseLevel(viper.GetString("logLevel")))
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		},
	}
	closer := func() {}

	logsDir := viper.GetString("logsDir")
	if logsDir != "" {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("creating logs dir: %w", err)
		}
		file, err := os.Create(LogFilePath(logsDir, appName, time.Now().UTC()))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("creating log file: %w", err)
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
		closer = func() { _ = file.Close() }
	}

	if viper.GetBool("graylog.enabled") {
		gw, err := gelf.NewWriter(viper.GetString("graylog.address"))
		if err != nil {
			closer()
			return zerolog.Nop(), nil, fmt.Errorf("connecting graylog: %w", err)
		}
		writers = append(writers, gw)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Str("app", appName).Logger()
	logger.Info().Str("loglevel", logger.GetLevel().String()).Msg("Logging set up")
	return logger, closer, nil
}
