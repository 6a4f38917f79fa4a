package usecase

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"CryptoView/internal/clock"
	domrepo "CryptoView/internal/domain/repository"
	applogger "CryptoView/pkg/logger"
)

// ErrSessionNotFound is returned for unknown or expired search sessions.
var ErrSessionNotFound = errors.New("search session not found")

// DefaultSessionTTL is how long an untouched search session is kept.
const DefaultSessionTTL = 10 * time.Minute

type searchSession struct {
	d       *SearchDebouncer
	touched time.Time
}

// SearchSessions holds one debouncer per remote input stream.
type SearchSessions struct {
	market domrepo.MarketData
	clk    clock.Clock
	opt    SearchOptions
	ttl    time.Duration
	logger *applogger.Logger

	mu       sync.Mutex
	sessions map[string]*searchSession
}

func NewSearchSessions(market domrepo.MarketData, clk clock.Clock, opt SearchOptions, ttl time.Duration) *SearchSessions {
	if clk == nil {
		clk = clock.Real()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SearchSessions{
		market:   market,
		clk:      clk,
		opt:      opt,
		ttl:      ttl,
		logger:   applogger.NewNop(),
		sessions: map[string]*searchSession{},
	}
}

// SetLogger allows DI to inject a logger after construction.
func (s *SearchSessions) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Create opens a session and returns its id.
func (s *SearchSessions) Create() string {
	id := uuid.NewString()
	d := NewSearchDebouncer(s.market, s.clk, s.opt, s.logger)
	s.mu.Lock()
	s.sessions[id] = &searchSession{d: d, touched: s.clk.Now()}
	s.mu.Unlock()
	return id
}

func (s *SearchSessions) get(id string) (*SearchDebouncer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touched = s.clk.Now()
	return sess.d, nil
}

// Input feeds a keystroke into session id.
func (s *SearchSessions) Input(id, query string, existing []string) (SearchResult, error) {
	d, err := s.get(id)
	if err != nil {
		return SearchResult{}, err
	}
	d.Input(query, existing)
	return d.Result(), nil
}

// Result returns the current result of session id.
func (s *SearchSessions) Result(id string) (SearchResult, error) {
	d, err := s.get(id)
	if err != nil {
		return SearchResult{}, err
	}
	return d.Result(), nil
}

// Close tears session id down; late results are discarded.
func (s *SearchSessions) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.d.Close()
	return nil
}

// Sweep closes sessions idle for longer than the TTL.
func (s *SearchSessions) Sweep() int {
	now := s.clk.Now()
	var stale []*SearchDebouncer
	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.touched) > s.ttl {
			stale = append(stale, sess.d)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, d := range stale {
		d.Close()
	}
	if len(stale) > 0 {
		s.logger.Debug("search sessions expired", applogger.Int("count", len(stale)))
	}
	return len(stale)
}

// CloseAll tears every session down.
func (s *SearchSessions) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = map[string]*searchSession{}
	s.mu.Unlock()
	for _, sess := range all {
		sess.d.Close()
	}
}

// Len is the number of open sessions.
func (s *SearchSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
