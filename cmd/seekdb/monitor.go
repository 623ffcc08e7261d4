package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/metrics"
	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

// monitorCommand keeps a connection open, serves Prometheus metrics and
// periodically counts collections and their records until interrupted.
func (c *cli) monitorCommand() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Serve metrics and poll collection sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return seekdb.NewError(seekdb.CategoryInvalidInput, nil, "--interval must be positive")
			}
			return c.run(cmd, runtimeOptions{metrics: true}, func(ctx context.Context, rt *runtime) error {
				log := rt.logger.WithContext(ctx)
				gauges := newMonitorMetrics(rt.metrics)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					pollCollections(ctx, rt, log, gauges)
					select {
					case <-ctx.Done():
						log.Info("monitor stopped")
						return nil
					case <-ticker.C:
					}
				}
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "poll interval")
	return cmd
}

// monitorMetrics are the series the monitor maintains in addition to the
// per-operation metrics every command reports.
type monitorMetrics struct {
	records      *prometheus.GaugeVec
	pollDuration *prometheus.HistogramVec
}

func newMonitorMetrics(m *metrics.Metrics) *monitorMetrics {
	if m == nil {
		return nil
	}
	return &monitorMetrics{
		records: m.CreateGauge("collection_records", "Records per collection at the last poll", []string{"collection"}),
		pollDuration: m.CreateHistogram("monitor_poll_duration_seconds", "Duration of one monitor poll",
			[]string{"status"}, prometheus.DefBuckets),
	}
}

// pollCollections logs the record count of every collection. Failures are
// logged and do not stop the monitor.
func pollCollections(ctx context.Context, rt *runtime, log *zap.Logger, mm *monitorMetrics) {
	start := time.Now()
	status := "success"
	defer func() {
		if mm != nil {
			mm.pollDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
		}
	}()

	names, err := rt.client.ListCollections(ctx)
	if err != nil {
		status = "error"
		log.Warn("listing collections failed", zap.Error(err))
		return
	}
	for _, name := range names {
		col, err := rt.client.GetCollection(ctx, name)
		if err != nil {
			status = "error"
			log.Warn("resolving collection failed", zap.String("collection", name), zap.Error(err))
			continue
		}
		n, err := col.Count(ctx)
		if err != nil {
			status = "error"
			log.Warn("counting collection failed", zap.String("collection", name), zap.Error(err))
			continue
		}
		if mm != nil {
			mm.records.WithLabelValues(name).Set(float64(n))
		}
		log.Info("collection size", zap.String("collection", name), zap.Uint64("records", n))
	}
}
