package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// setupLogging sets the global zerolog level and sends logs to stderr.
// --verbose lowers the level to at least debug.
func setupLogging(level string, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	zlevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		zlevel = zerolog.WarnLevel
	}
	if verbose && zlevel > zerolog.DebugLevel {
		zlevel = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(zlevel)

	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	})
}
