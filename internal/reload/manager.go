// Package reload keeps the last good Config of a configuration file. A reload
// compiles the file from scratch and swaps the result in only when it is
// valid; a broken file never replaces a working configuration.
package reload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/sourceplane/jobconf/internal/compiler"
	"github.com/sourceplane/jobconf/internal/model"
)

// Config configures a Manager.
type Config struct {
	// Path of the configuration file.
	Path   string
	Logger zerolog.Logger
	// Registerer receives the reload metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// Snapshot is one successfully compiled generation of the configuration.
type Snapshot struct {
	ID       uuid.UUID
	LoadedAt time.Time
	// Digest is the hex sha256 of the file content the snapshot was built from.
	Digest string
	Config *model.Config
}

// Manager loads and holds the current Snapshot. Current is safe to call from
// any goroutine; reloads are serialized.
type Manager struct {
	path   string
	logger zerolog.Logger

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]

	reloadDuration prometheus.Histogram
	reloadTotal    *prometheus.CounterVec
	generation     prometheus.Gauge
	generations    int
}

// New creates a Manager. No configuration is loaded until Reload is called.
func New(cfg Config) (*Manager, error) {
	if cfg.Path == "" {
		return nil, errors.New("reload: config path is required")
	}
	factory := promauto.With(cfg.Registerer)
	return &Manager{
		path:   cfg.Path,
		logger: cfg.Logger.With().Str("component", "reload").Str("path", cfg.Path).Logger(),
		reloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobconf_reload_duration_seconds",
			Help:    "Duration of each configuration reload",
			Buckets: prometheus.DefBuckets,
		}),
		reloadTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobconf_reloads_total",
			Help: "Total configuration reloads",
		}, []string{"result"}),
		generation: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jobconf_config_generation",
			Help: "Number of configuration generations loaded successfully",
		}),
	}, nil
}

// Current returns the snapshot in force, or nil before the first successful
// reload.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Reload compiles the file and makes it current. On any error the previous
// snapshot stays in force and is returned alongside the error. An unchanged
// file keeps the current snapshot without recompiling.
func (m *Manager) Reload(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	prev := m.current.Load()
	m.logger.Debug().Msg("reloading configuration")

	snap, err := m.load(ctx, prev)
	duration := time.Since(start).Seconds()
	m.reloadDuration.Observe(duration)

	if err != nil {
		m.reloadTotal.WithLabelValues("failure").Inc()
		ev := m.logger.Error().Err(err).Float64("duration_s", duration)
		if prev != nil {
			ev = ev.Str("retained_id", prev.ID.String())
		}
		ev.Msg("configuration reload failed")
		return prev, err
	}
	if snap == prev {
		m.reloadTotal.WithLabelValues("unchanged").Inc()
		m.logger.Debug().Str("id", prev.ID.String()).Msg("configuration unchanged")
		return prev, nil
	}

	m.current.Store(snap)
	m.generations++
	m.generation.Set(float64(m.generations))
	m.reloadTotal.WithLabelValues("success").Inc()
	m.logger.Info().
		Str("id", snap.ID.String()).
		Int("nodes", snap.Config.Nodes.Len()).
		Int("node_pools", snap.Config.NodePools.Len()).
		Int("jobs", snap.Config.Jobs.Len()).
		Int("services", snap.Config.Services.Len()).
		Float64("duration_s", duration).
		Msg("configuration loaded")
	return snap, nil
}

func (m *Manager) load(ctx context.Context, prev *Snapshot) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, model.Wrap("", err, "failed to read config file")
	}
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if prev != nil && prev.Digest == digest {
		return prev, nil
	}

	cfg, err := compiler.Compile(data)
	if err != nil {
		return nil, err
	}
	// The caller may have given up while we compiled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:       uuid.New(),
		LoadedAt: time.Now(),
		Digest:   digest,
		Config:   cfg,
	}, nil
}

// RunLoop reloads every interval until ctx is done. Failures are logged and
// the loop keeps going.
func (m *Manager) RunLoop(ctx context.Context, interval time.Duration) {
	m.logger.Info().Dur("interval", interval).Msg("starting reload loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("reload loop stopped")
			return
		case <-ticker.C:
			// Reload logs its own failures.
			_, _ = m.Reload(ctx)
		}
	}
}
