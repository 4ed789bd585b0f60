package contract

import (
	"os"

	"github.com/rs/zerolog"
)

// logger writes structured console output to stderr so that data output on
// stdout stays machine-readable.
var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	With().Timestamp().Logger()

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	logger.Warn().Err(err).Msg(msg)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logger.Fatal().Err(err).Msg(msg)
}
