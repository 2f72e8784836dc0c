package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectAttemptsTotal      = promauto.NewCounter(prometheus.CounterOpts{Name: "logrelay_connect_attempts_total", Help: "Dial attempts against the log source"})
	ConnectionsTotal          = promauto.NewCounter(prometheus.CounterOpts{Name: "logrelay_connections_total", Help: "Connections established"})
	DisconnectsTotal          = promauto.NewCounterVec(prometheus.CounterOpts{Name: "logrelay_disconnects_total", Help: "Failed dials and dropped connections by reason"}, []string{"reason"})
	LinesTotal                = promauto.NewCounter(prometheus.CounterOpts{Name: "logrelay_lines_total", Help: "Lines written to the output"})
	BytesTotal                = promauto.NewCounter(prometheus.CounterOpts{Name: "logrelay_bytes_total", Help: "Line bytes written to the output, terminators excluded"})
	Connected                 = promauto.NewGauge(prometheus.GaugeOpts{Name: "logrelay_connected", Help: "1 while a connection to the log source is open"})
	ConnectionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{Name: "logrelay_connection_duration_seconds", Help: "Connection lifetime seconds", Buckets: prometheus.ExponentialBuckets(0.01, 2, 16)})
	MirrorErrorsTotal         = promauto.NewCounter(prometheus.CounterOpts{Name: "logrelay_mirror_errors_total", Help: "Lines the mirror failed to publish"})
)
