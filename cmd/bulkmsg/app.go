package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/bingotables/bulkmsg/internal/bulkapi"
	"github.com/bingotables/bulkmsg/internal/config"
	"github.com/bingotables/bulkmsg/internal/console"
	"github.com/bingotables/bulkmsg/internal/metrics"
	"github.com/bingotables/bulkmsg/internal/monitor"
	"github.com/bingotables/bulkmsg/internal/session"
)

// reportedError marks an error the operator already saw as a notification
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// app is the state shared by the commands of one invocation
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	client  *bulkapi.Client
	store   *session.Store
	gate    *monitor.Gate
	console *console.Console
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.FromEnv()
	}
	return config.Load(configFile)
}

// newApp wires config, logging, metrics, the API client and the console.
// When withSession is set the named session is opened and restored.
func newApp(logOut io.Writer, withSession bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, logOut)
	slog.SetDefault(logger)

	m := metrics.New()
	metrics.SetGlobal(m)

	client := bulkapi.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout,
		bulkapi.WithRateLimit(cfg.API.RateLimit),
		bulkapi.WithLogger(logger),
	)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		client:  client,
		gate:    monitor.NewGate(),
	}
	a.console = console.New(client, cfg, a.holder(), console.NewWriterNotifier(os.Stderr), logger)

	if withSession {
		store, err := session.Open(cfg.Session.Path)
		if err != nil {
			return nil, err
		}
		a.store = store

		st, err := store.LoadOrNew(sessionName)
		if err != nil {
			store.Close()
			return nil, err
		}
		a.console.Restore(st)
	}
	return a, nil
}

// holder is the gate campaign commands hold: the poller of the serve
// instance at monitor.url when one is configured, else the local gate.
func (a *app) holder() monitor.Holder {
	if a.cfg.Monitor.URL == "" {
		return a.gate
	}
	return monitor.NewRemoteGate(a.cfg.Monitor.URL, a.cfg.Monitor.APIKey, a.cfg.API.Timeout, a.logger)
}

// save persists the console state into the session
func (a *app) save() error {
	if a.store == nil {
		return nil
	}
	return a.store.Save(sessionName, a.console.State())
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
