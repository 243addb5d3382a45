package zerolog_config

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.elastic.co/ecszerolog"
)

var appName = "wardconsole"
var setAppNameOnce *sync.Once = &sync.Once{}
var startupLoggerOnce *sync.Once = &sync.Once{}

// Options controls where the console logger writes and at which level.
type Options struct {
	ElasticsearchURL string
	Index            string
	Level            string
	Out              io.Writer
}

// ElasticsearchWriter ships ECS log lines to an Elasticsearch index
type ElasticsearchWriter struct {
	URL    string
	Client *http.Client
}

func (ew ElasticsearchWriter) Write(p []byte) (n int, err error) {
	client := ew.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Post(ew.URL+"/_doc", "application/json", bytes.NewBuffer(p))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("elasticsearch returned %d", resp.StatusCode)
	}

	return len(p), nil
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewLogger builds the logger described by opts without touching the global one.
func NewLogger(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: out}

	if opts.ElasticsearchURL == "" {
		return zerolog.New(console).Level(ParseLevel(opts.Level)).
			With().Str("app", appName).Timestamp().Logger()
	}

	ecsLogger := ecszerolog.New(&ElasticsearchWriter{
		URL: strings.TrimRight(opts.ElasticsearchURL, "/") + "/" + opts.Index,
	})

	// ECS to Elasticsearch, pretty to console
	multi := zerolog.MultiLevelWriter(ecsLogger, console)

	return zerolog.New(multi).Level(ParseLevel(opts.Level)).
		With().Str("app", appName).Timestamp().Logger()
}

// SetAppName sets the app field stamped on every log line. Only the first call wins.
func SetAppName(name string) {
	setAppNameOnce.Do(func() {
		appName = name
	})
}

// Startup installs the global logger once.
// Run SetAppName before Startup.
func Startup(opts Options) error {
	if opts.ElasticsearchURL != "" && opts.Index == "" {
		return fmt.Errorf("log index is required when elasticsearch is configured")
	}
	startupLoggerOnce.Do(func() {
		log.Logger = NewLogger(opts)
		zerolog.SetGlobalLevel(ParseLevel(opts.Level))
	})
	return nil
}
