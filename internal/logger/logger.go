package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func isDev(appEnv string) bool {
	env := strings.ToLower(appEnv)
	return env == "development" || env == "dev"
}

// New builds a logger writing to out. Dev environments get the console writer, everything else JSON.
func New(out io.Writer, logLevelStr, appEnv, appName string) zerolog.Logger {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil || logLevelStr == "" {
		parsedLevel = zerolog.InfoLevel
	}

	if isDev(appEnv) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(parsedLevel).With().Timestamp()
	if appName != "" {
		ctx = ctx.Str("app", appName)
	}
	return ctx.Logger()
}

// Init initializes the global zerolog logger and routes the standard library logger through it.
func Init(logLevelStr, appEnv, appName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = New(os.Stdout, logLevelStr, appEnv, appName)

	if _, err := zerolog.ParseLevel(strings.ToLower(logLevelStr)); err != nil {
		log.Warn().Err(err).Msgf("Invalid log level '%s', defaulting to 'info'", logLevelStr)
	}

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}
