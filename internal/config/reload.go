package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Ambient is the subset of Config safe to hot-reload at runtime: log level,
// rate limiting, and tracing toggles. Catalogue source, publish tick, TTL,
// and outbound capacity stay process-lifetime constants, since changing
// tick or channel sizing after sessions and schedulers already exist has
// no well-defined live-migration semantics.
type Ambient struct {
	Log     LogConfig
	HTTP    HTTPConfig
	Metrics MetricsConfig
	Tracing TracingConfig
}

func (c Config) ambient() Ambient {
	return Ambient{Log: c.Log, HTTP: c.HTTP, Metrics: c.Metrics, Tracing: c.Tracing}
}

// Watcher reloads the file at path on change and republishes the resulting
// Ambient config to subscribers via onChange. Reload failures are logged
// and leave the previous config in effect.
type Watcher struct {
	path      string
	loadPath  string
	onChange  func(Ambient)
	log       zerolog.Logger

	mu      sync.Mutex
	current Ambient
}

// NewWatcher constructs a Watcher over the YAML file at configPath, calling
// onChange whenever the ambient subset changes. initial is the config
// loaded at startup.
func NewWatcher(configPath string, initial Config, onChange func(Ambient), log zerolog.Logger) *Watcher {
	return &Watcher{
		path:     configPath,
		loadPath: configPath,
		onChange: onChange,
		log:      log,
		current:  initial.ambient(),
	}
}

// Run watches the config file's parent directory and reloads on any
// create/write event targeting it, until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.loadPath)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.loadPath).Msg("ambient config reload failed, keeping previous values")
		return
	}

	next := cfg.ambient()
	w.mu.Lock()
	w.current = next
	w.mu.Unlock()

	w.log.Info().Msg("ambient config reloaded")
	if w.onChange != nil {
		w.onChange(next)
	}
}
