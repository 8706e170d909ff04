package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStater is satisfied by *pgxpool.Pool.
type PoolStater interface {
	Stat() *pgxpool.Stat
}

// RegisterPoolMetrics exposes store connection pool statistics as gauges.
func RegisterPoolMetrics(reg prometheus.Registerer, pool PoolStater) {
	gauge := func(name, help string, value func(*pgxpool.Stat) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "crisis",
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return value(pool.Stat())
		})
	}
	reg.MustRegister(
		gauge("acquired_conns", "Connections currently checked out", func(s *pgxpool.Stat) float64 {
			return float64(s.AcquiredConns())
		}),
		gauge("idle_conns", "Idle connections", func(s *pgxpool.Stat) float64 {
			return float64(s.IdleConns())
		}),
		gauge("total_conns", "Open connections", func(s *pgxpool.Stat) float64 {
			return float64(s.TotalConns())
		}),
		gauge("max_conns", "Configured connection limit", func(s *pgxpool.Stat) float64 {
			return float64(s.MaxConns())
		}),
		gauge("empty_acquire_total", "Acquires that had to wait for a connection", func(s *pgxpool.Stat) float64 {
			return float64(s.EmptyAcquireCount())
		}),
	)
}
