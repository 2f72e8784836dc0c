package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusLifecycle(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &status{addr: "localhost:4567"}

	s.attempt()
	s.disconnect(ReasonRefused, start)
	st := s.snapshot(start)
	assert.False(t, st.Connected)
	assert.EqualValues(t, 1, st.Attempts)
	assert.Equal(t, "refused", st.LastReason)
	assert.Empty(t, st.ConnectedSince)

	s.attempt()
	s.connect("sess-1", start)
	s.line(5)
	s.line(0)
	st = s.snapshot(start.Add(time.Second))
	assert.True(t, st.Connected)
	assert.Equal(t, "sess-1", st.Session)
	assert.Equal(t, "2026-01-02T03:04:05Z", st.ConnectedSince)
	assert.EqualValues(t, 2, st.Lines)
	assert.EqualValues(t, 5, st.Bytes)
	assert.Equal(t, "2026-01-02T03:04:06Z", st.Now)

	up := s.disconnect(ReasonEOF, start.Add(3*time.Second))
	assert.Equal(t, 3*time.Second, up)
	st = s.snapshot(start)
	assert.False(t, st.Connected)
	assert.Empty(t, st.Session)
	assert.EqualValues(t, 1, st.Connections)
	assert.EqualValues(t, 2, st.Attempts)

	assert.Zero(t, s.disconnect(ReasonEOF, start), "no uptime while already disconnected")
}

func TestStatsTemplateMap(t *testing.T) {
	m := Stats{Addr: "localhost:4567", Connected: true, Lines: 7, LastReason: "eof"}.ToTemplateMap()
	assert.Equal(t, "localhost:4567", m["Addr"])
	assert.Equal(t, true, m["Connected"])
	assert.EqualValues(t, 7, m["Lines"])
	assert.Equal(t, "eof", m["LastReason"])
}
