package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
	// Level overrides Debug when set (trace, debug, info, warn, error).
	Level string `split_words:"true"`
	// Quiet writes to stderr so a chat REPL on stdout stays readable.
	Quiet bool `split_words:"true" default:"false"`
}

var DefaultConfig = &Config{}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

func (c *Config) level() zerolog.Level {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.Level))); err == nil && c.Level != "" {
		return lvl
	}
	if c.Debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

func (c *Config) writer() io.Writer {
	var out io.Writer = os.Stdout
	if c.Quiet {
		out = os.Stderr
	}
	if c.PrettyFormat {
		return zerolog.ConsoleWriter{Out: out}
	}
	return out
}

func Init(opts ...Config) {
	conf := safe(opts...)

	log.Logger = zerolog.New(conf.writer()).
		Level(conf.level()).
		With().
		Timestamp().
		Caller().
		Stack().
		Logger()
}

// For returns a child of the global logger tagged with a component name.
func For(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
