package contract

import (
	"io"
	"os"
	"time"

	"github.com/huangsam/transit/schema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger configures the global logger. Logs always go to stderr so that
// stdout stays reserved for command output.
func SetupLogger(level zerolog.Level, format schema.LogFormat) {
	SetupLoggerTo(os.Stderr, level, format)
}

// SetupLoggerTo is SetupLogger with an explicit destination.
func SetupLoggerTo(w io.Writer, level zerolog.Level, format schema.LogFormat) {
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	output := w
	if format != schema.JSONLog {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
			NoColor:    !isTerminal(w),
		}
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	log.Error().Err(err).Msg(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	log.Warn().Err(err).Msg(msg)
}
