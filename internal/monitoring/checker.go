package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harborlight/scout-cli/internal/config"
)

// Checker runs periodic alert checks in the background.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	cfg       config.MonitoringConfig
}

// NewChecker creates a background alert checker.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		collector: collector,
		alerter:   alerter,
		cfg:       cfg,
	}
}

// Run starts the periodic check loop. It blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	interval := time.Duration(c.cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting alert checker",
		zap.Duration("interval", interval),
		zap.Int("lookback_mins", c.cfg.LookbackMins),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("alert checker stopped")
			return
		case <-ticker.C:
			c.check(ctx, log)
		}
	}
}

func (c *Checker) check(ctx context.Context, log *zap.Logger) {
	snap, err := c.collector.Collect(ctx, c.cfg.LookbackMins)
	if err != nil {
		log.Error("monitoring: failed to collect extraction metrics", zap.Error(err))
		return
	}
	if snap.Total == 0 {
		log.Debug("monitoring: no extractions in window")
		return
	}

	alerts := c.alerter.Evaluate(snap)
	if len(alerts) == 0 {
		log.Debug("monitoring: extraction health within thresholds",
			zap.Int("records", snap.Total),
			zap.Float64("avg_confidence", snap.AvgConfidence),
			zap.Float64("failure_rate", snap.FailureRate),
		)
		return
	}

	triggered := make([]string, len(alerts))
	for i, alert := range alerts {
		triggered[i] = string(alert.Type)
	}

	sent := c.alerter.SendAlerts(ctx, alerts)
	log.Warn("monitoring: extraction health degraded",
		zap.Strings("alerts", triggered),
		zap.Int("alerts_sent", sent),
		zap.Int("records", snap.Total),
		zap.Float64("avg_confidence", snap.AvgConfidence),
		zap.Float64("failure_rate", snap.FailureRate),
		zap.Float64("correction_share", snap.CorrectionShare),
	)
}
