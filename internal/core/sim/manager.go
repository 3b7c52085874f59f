package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/planetoid/internal/core/events/bus"
	"github.com/zeusync/planetoid/internal/core/observability/log"
	"github.com/zeusync/planetoid/pkg/concurrent"
)

// ManagerConfig controls the frame loop shared by all sessions.
type ManagerConfig struct {
	TickRate    int `yaml:"tick_rate"`
	MaxSessions int `yaml:"max_sessions"`
	// Workers bounds how many sessions are stepped in parallel; 0 means one
	// goroutine per session.
	Workers int `yaml:"workers"`
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		TickRate:    60,
		MaxSessions: 1000,
		Workers:     8,
	}
}

func (c ManagerConfig) Validate() error {
	if c.TickRate <= 0 {
		return ErrInvalidTickRate
	}
	if c.MaxSessions < 0 || c.Workers < 0 {
		return fmt.Errorf("%w: max sessions %d, workers %d", ErrInvalidConfig, c.MaxSessions, c.Workers)
	}
	return nil
}

// Manager owns every live session and drives them from one ticker.
type Manager struct {
	config ManagerConfig
	bus    bus.EventBus
	logger log.Log

	sessions     sync.Map // map[string]*Session
	sessionCount atomic.Int64

	running  atomic.Bool
	ticks    atomic.Uint64
	airborne atomic.Int64
}

// Stats contains manager statistics
type Stats struct {
	Sessions int64  `json:"sessions"`
	Ticks    uint64 `json:"ticks"`
	TickRate int    `json:"tick_rate"`
	Running  bool   `json:"running"`
	// Airborne is the number of agents off the ground after the last tick.
	Airborne int64 `json:"airborne"`
}

func NewManager(config ManagerConfig, eventBus bus.EventBus, logger log.Log) *Manager {
	return &Manager{
		config: config,
		bus:    eventBus,
		logger: logger.With(log.Component("sim")),
	}
}

func (m *Manager) Config() ManagerConfig { return m.config }
func (m *Manager) Bus() bus.EventBus { return m.bus }

// Create starts a new session. It is stepped from the next tick on.
func (m *Manager) Create(cfg Config) (*Session, error) {
	if n := m.sessionCount.Add(1); m.config.MaxSessions > 0 && n > int64(m.config.MaxSessions) {
		m.sessionCount.Add(-1)
		m.logger.Warn("Maximum sessions reached", log.Int("max_sessions", m.config.MaxSessions))
		return nil, ErrMaxSessionsReached
	}

	s, err := NewSession(cfg, m.bus, m.logger)
	if err != nil {
		m.sessionCount.Add(-1)
		return nil, err
	}
	m.sessions.Store(s.ID(), s)
	m.publish(EventSessionCreated, s.ID())
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.sessions.Load(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return v.(*Session), nil
}

// Remove stops stepping the session and closes it.
func (m *Manager) Remove(id string) error {
	v, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return ErrSessionNotFound
	}
	m.sessionCount.Add(-1)
	v.(*Session).Close()
	m.publish(EventSessionRemoved, id)
	return nil
}

func (m *Manager) publish(typ, id string) {
	if err := m.bus.Publish(bus.NewEvent(typ, "sim", id)); err != nil {
		m.logger.Warn("Lifecycle handler failed", log.String("event", typ), log.Error(err))
	}
}

func (m *Manager) Len() int { return int(m.sessionCount.Load()) }

// Sessions returns the live sessions ordered by creation time.
func (m *Manager) Sessions() []*Session {
	var out []*Session
	m.sessions.Range(func(_, value any) bool {
		out = append(out, value.(*Session))
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out
}

// StepAll runs one frame for every session. Sessions are independent, so
// they are stepped in parallel; each session is only touched by one goroutine.
func (m *Manager) StepAll(ctx context.Context) error {
	snapshots, err := concurrent.ParallelMap(ctx, m.Sessions(), m.config.Workers, (*Session).Tick)
	if err != nil {
		return err
	}
	var airborne int64
	for _, snap := range snapshots {
		if !snap.Grounded {
			airborne++
		}
	}
	m.airborne.Store(airborne)
	m.ticks.Add(1)
	return nil
}

// Run steps all sessions at the configured tick rate until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if m.config.TickRate <= 0 {
		return ErrInvalidTickRate
	}
	if !m.running.CompareAndSwap(false, true) {
		return ErrManagerRunning
	}
	defer m.running.Store(false)

	interval := time.Second / time.Duration(m.config.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("Simulation loop started", log.Duration("interval", interval))
	defer func() {
		m.logger.Info("Simulation loop stopped", log.Uint64("ticks", m.ticks.Load()))
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			start := time.Now()
			if err := m.StepAll(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				m.logger.Error("Frame failed", log.Error(err))
				continue
			}
			if elapsed := time.Since(start); elapsed > interval {
				m.logger.Warn("Frame overran its budget",
					log.Duration("elapsed", elapsed),
					log.Int64("sessions", m.sessionCount.Load()))
			}
		}
	}
}

// Close removes every session.
func (m *Manager) Close() {
	for _, s := range m.Sessions() {
		_ = m.Remove(s.ID())
	}
}

func (m *Manager) GetStats() Stats {
	return Stats{
		Sessions: m.sessionCount.Load(),
		Ticks:    m.ticks.Load(),
		TickRate: m.config.TickRate,
		Running:  m.running.Load(),
		Airborne: m.airborne.Load(),
	}
}
