package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/harborlight/scout-cli/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertLowConfidence   AlertType = "low_confidence"
	AlertHighFailureRate AlertType = "high_failure_rate"
	AlertCorrectionSurge AlertType = "correction_surge"
)

// minSampleSize is the record count below which thresholds are not
// evaluated; a handful of extractions says nothing about health.
const minSampleSize = 5

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a MetricsSnapshot against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *MetricsSnapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	if snap.Total >= minSampleSize && a.cfg.MinConfidence > 0 && snap.AvgConfidence < a.cfg.MinConfidence {
		alerts = append(alerts, Alert{
			Type:     AlertLowConfidence,
			Severity: "medium",
			Message: fmt.Sprintf(
				"Average extraction confidence %.2f below threshold %.2f (%d records in last %dm)",
				snap.AvgConfidence, a.cfg.MinConfidence, snap.Total, snap.LookbackMins,
			),
			Details: map[string]any{
				"avg_confidence": snap.AvgConfidence,
				"threshold":      a.cfg.MinConfidence,
				"total":          snap.Total,
			},
			Timestamp: now,
		})
	}

	finished := snap.VerifiedCorrect + snap.VerifiedFailed
	if finished >= minSampleSize && snap.FailureRate > a.cfg.MaxFailureRate {
		alerts = append(alerts, Alert{
			Type:     AlertHighFailureRate,
			Severity: "high",
			Message: fmt.Sprintf(
				"Extraction failure rate %.1f%% exceeds threshold %.1f%% (%d failed / %d verified in last %dm)",
				snap.FailureRate*100, a.cfg.MaxFailureRate*100,
				snap.VerifiedFailed, finished, snap.LookbackMins,
			),
			Details: map[string]any{
				"failure_rate": snap.FailureRate,
				"threshold":    a.cfg.MaxFailureRate,
				"failed":       snap.VerifiedFailed,
				"finished":     finished,
			},
			Timestamp: now,
		})
	}

	if snap.Total >= minSampleSize && a.cfg.MaxCorrectionShare > 0 && snap.CorrectionShare > a.cfg.MaxCorrectionShare {
		alerts = append(alerts, Alert{
			Type:     AlertCorrectionSurge,
			Severity: "medium",
			Message: fmt.Sprintf(
				"%.1f%% of extractions needed human correction, above %.1f%% (last %dm)",
				snap.CorrectionShare*100, a.cfg.MaxCorrectionShare*100, snap.LookbackMins,
			),
			Details: map[string]any{
				"correction_share": snap.CorrectionShare,
				"threshold":        a.cfg.MaxCorrectionShare,
				"total":            snap.Total,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
