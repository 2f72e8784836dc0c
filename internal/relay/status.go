package relay

import (
	"sync"
	"time"

	"github.com/matst80/logrelay/internal/obs"
)

// Stats is a point-in-time view of the relay for dashboards & API.
type Stats struct {
	Addr           string `json:"addr"`
	Connected      bool   `json:"connected"`
	Session        string `json:"session,omitempty"`
	ConnectedSince string `json:"connected_since,omitempty"`
	Attempts       int64  `json:"attempts"`
	Connections    int64  `json:"connections"`
	Lines          int64  `json:"lines"`
	Bytes          int64  `json:"bytes"`
	LastReason     string `json:"last_reason,omitempty"`
	Closing        bool   `json:"closing"`
	Now            string `json:"now"`
}

// ToTemplateMap returns a map suited for html/template rendering with expected capitalized keys.
func (s Stats) ToTemplateMap() map[string]any {
	return map[string]any{
		"Addr":        s.Addr,
		"Connected":   s.Connected,
		"Session":     s.Session,
		"Since":       s.ConnectedSince,
		"Attempts":    s.Attempts,
		"Connections": s.Connections,
		"Lines":       s.Lines,
		"Bytes":       s.Bytes,
		"LastReason":  s.LastReason,
	}
}

// status is the mutable counterpart of Stats, written by the relay loop and
// read by the metrics server.
type status struct {
	mu          sync.Mutex
	addr        string
	connected   bool
	session     string
	since       time.Time
	attempts    int64
	connections int64
	lines       int64
	bytes       int64
	lastReason  Reason
	closing     bool
}

func (s *status) attempt() {
	s.mu.Lock()
	s.attempts++
	s.mu.Unlock()
	obs.ConnectAttemptsTotal.Inc()
}

func (s *status) connect(session string, at time.Time) {
	s.mu.Lock()
	s.connected = true
	s.session = session
	s.since = at
	s.connections++
	s.mu.Unlock()
	obs.ConnectionsTotal.Inc()
	obs.Connected.Set(1)
}

func (s *status) line(n int) {
	s.mu.Lock()
	s.lines++
	s.bytes += int64(n)
	s.mu.Unlock()
	obs.LinesTotal.Inc()
	obs.BytesTotal.Add(float64(n))
}

// disconnect records why the last attempt or connection ended and returns how
// long the connection had been up (zero if it never came up).
func (s *status) disconnect(reason Reason, at time.Time) time.Duration {
	s.mu.Lock()
	var up time.Duration
	if s.connected {
		up = at.Sub(s.since)
	}
	s.connected = false
	s.session = ""
	s.lastReason = reason
	s.mu.Unlock()
	obs.Connected.Set(0)
	obs.DisconnectsTotal.WithLabelValues(string(reason)).Inc()
	return up
}

func (s *status) setClosing() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
}

func (s *status) snapshot(now time.Time) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Addr:        s.addr,
		Connected:   s.connected,
		Session:     s.session,
		Attempts:    s.attempts,
		Connections: s.connections,
		Lines:       s.lines,
		Bytes:       s.bytes,
		LastReason:  string(s.lastReason),
		Closing:     s.closing,
		Now:         now.UTC().Format(time.RFC3339),
	}
	if s.connected {
		st.ConnectedSince = s.since.UTC().Format(time.RFC3339)
	}
	return st
}
