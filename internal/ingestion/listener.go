package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"fleetview/internal/logger"
	"fleetview/internal/metrics"
	pkgmqtt "fleetview/pkg/mqtt"
)

const invalidateTimeout = 5 * time.Second

// CacheInvalidator drops cached telemetry for a user so the next request
// refetches from the platform.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// AlarmListenerConfig describes the alarm topic and MQTT connection parameters.
type AlarmListenerConfig struct {
	ClientConfig *pkgmqtt.Config
	AlarmTopic   string
	QoS          byte
}

// AlarmListener wires platform alarm pushes into cache invalidation, so
// dashboards pick up alarm state without waiting for the cache TTL.
type AlarmListener struct {
	cfg         *AlarmListenerConfig
	client      *pkgmqtt.Client
	invalidator CacheInvalidator
	collector   metrics.Collector

	mu            sync.Mutex
	started       bool
	subscriptions []string
}

// NewAlarmListener builds a new MQTT listener for alarm pushes.
func NewAlarmListener(cfg *AlarmListenerConfig, invalidator CacheInvalidator, collector metrics.Collector) (*AlarmListener, error) {
	if cfg == nil || cfg.ClientConfig == nil {
		return nil, errors.New("alarm listener config is not configured")
	}
	if cfg.AlarmTopic == "" {
		return nil, errors.New("no alarm topic configured")
	}
	if invalidator == nil {
		return nil, errors.New("cache invalidator is required")
	}
	if collector == nil {
		collector = metrics.Noop()
	}

	client := pkgmqtt.NewClient(cfg.ClientConfig)
	return &AlarmListener{
		cfg:         cfg,
		client:      client,
		invalidator: invalidator,
		collector:   collector,
	}, nil
}

// Start establishes the MQTT connection and subscribes to the alarm topic.
func (l *AlarmListener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return nil
	}

	if err := l.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	if err := l.client.Subscribe(l.cfg.AlarmTopic, l.cfg.QoS, l.handleAlarmMessage); err != nil {
		l.client.Disconnect()
		return fmt.Errorf("subscribe failed for topic %s: %w", l.cfg.AlarmTopic, err)
	}
	l.subscriptions = append(l.subscriptions, l.cfg.AlarmTopic)

	l.started = true
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (l *AlarmListener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		return
	}

	if len(l.subscriptions) > 0 {
		if err := l.client.Unsubscribe(l.subscriptions...); err != nil {
			logger.Warn("failed to unsubscribe from MQTT topics", zap.Error(err))
		}
	}

	l.client.Disconnect()
	l.started = false
	l.subscriptions = nil
}

// handleAlarmMessage decodes an alarm push and invalidates the cached
// telemetry of the affected user.
func (l *AlarmListener) handleAlarmMessage(topic string, payload []byte) {
	msg, err := ParseAlarmMessage(payload)
	if err != nil {
		l.collector.IncAlarmMessage("invalid")
		logger.Warn("invalid alarm payload",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	if err := l.invalidator.InvalidateUser(ctx, msg.IDUser); err != nil {
		l.collector.IncAlarmMessage("invalidate_error")
		logger.Error("failed to invalidate cached telemetry for alarm",
			zap.String("id_user", msg.IDUser),
			zap.String("package_name", msg.PackageName),
			zap.Error(err),
		)
		return
	}

	l.collector.IncAlarmMessage("ok")
	logger.Info("alarm push processed",
		zap.String("id_user", msg.IDUser),
		zap.String("package_name", msg.PackageName),
		zap.String("alarm_type", msg.AlarmType),
	)
}
