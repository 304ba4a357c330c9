// Package session keeps per-visitor orchestrator state in memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/timmy/epigraph/internal/logger"
	"github.com/timmy/epigraph/internal/service"
)

// Session is the state of one visitor.
type Session struct {
	ID       string
	Analysis *service.AnalysisOrchestrator
	Chat     *service.ChatOrchestrator
	Feed     *service.FeedOrchestrator

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns the last time the session was used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Deps are the shared collaborators every session is built from.
type Deps struct {
	Gateway   service.AIGateway
	Store     service.Persistence
	Archive   service.ImageArchiver
	Analysis  service.AnalysisConfig
	FeedLimit int
}

// Config holds session lifetime settings.
type Config struct {
	TTL          time.Duration
	ReapSchedule string
}

// Manager maps session ids to sessions.
type Manager struct {
	deps Deps
	cfg  Config
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	cron *cron.Cron
}

// NewManager creates an empty session manager.
func NewManager(deps Deps, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.ReapSchedule == "" {
		cfg.ReapSchedule = "@every 5m"
	}
	return &Manager{
		deps:     deps,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for id, creating a new one with a fresh
// id when id is empty or unknown. created reports whether a new session was made.
func (m *Manager) GetOrCreate(id string) (sess *Session, created bool) {
	now := m.now()

	if id != "" {
		m.mu.RLock()
		sess, ok := m.sessions[id]
		m.mu.RUnlock()
		if ok {
			sess.touch(now)
			return sess, false
		}
	}

	sess = m.newSession(uuid.New().String(), now)
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return sess, true
}

func (m *Manager) newSession(id string, now time.Time) *Session {
	analysis := service.NewAnalysisOrchestrator(m.deps.Gateway, m.deps.Store, m.deps.Archive, m.deps.Analysis)
	feed := service.NewFeedOrchestrator(m.deps.Store, m.deps.FeedLimit)
	analysis.OnComplete(func(ctx context.Context, translationID string) {
		feed.Invalidate()
		logger.CtxDebug(ctx, "Community feed invalidated after new translation %s", translationID)
	})

	return &Session{
		ID:       id,
		Analysis: analysis,
		Chat:     service.NewChatOrchestrator(m.deps.Gateway),
		Feed:     feed,
		lastSeen: now,
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap drops sessions idle for longer than the TTL and returns how many were removed.
func (m *Manager) Reap() int {
	cutoff := m.now().Add(-m.cfg.TTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, sess := range m.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Start schedules the idle reaper.
func (m *Manager) Start(ctx context.Context) error {
	ctx = logger.SetComponent(ctx, "session_reaper")
	c := cron.New()
	_, err := c.AddFunc(m.cfg.ReapSchedule, func() {
		if n := m.Reap(); n > 0 {
			logger.With(logger.Fields{logger.FieldCount: n}).Info(ctx, "Idle sessions reaped")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	m.cron = c
	logger.CtxInfo(ctx, "Session reaper scheduled: %s ttl=%s", m.cfg.ReapSchedule, m.cfg.TTL)
	return nil
}

// Stop halts the reaper and waits for a running pass to finish.
func (m *Manager) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
}
