package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fleetview/internal/cache"
	domainSession "fleetview/internal/domain/session"
	"fleetview/internal/domain/telemetry"
	"fleetview/internal/logger"
	"fleetview/internal/metrics"
	"fleetview/internal/upstream"
	"fleetview/internal/usecase/fleet"
)

// freshPrefix holds responses inside their TTL; lastPrefix keeps the last
// good payload much longer so an upstream outage degrades to stale data
// instead of an empty dashboard.
const (
	freshPrefix = "telemetry"
	lastPrefix  = "telemetry-last"

	lastGoodTTL = 24 * time.Hour
)

// TelemetryClient is the slice of the upstream client the dashboard needs.
type TelemetryClient interface {
	Batteries(ctx context.Context, token, userID string) ([]telemetry.BatteryRecord, error)
	BatteryDetail(ctx context.Context, token, userID, packageName string) (*telemetry.BatteryRecord, error)
	Gensets(ctx context.Context, token, userID string) ([]telemetry.GensetRecord, error)
	GensetDetail(ctx context.Context, token, userID, packageName string) (*telemetry.GensetRecord, error)
	PowerMeters(ctx context.Context, token, userID string) ([]telemetry.PowerMeterRecord, error)
	PowerMeterDetail(ctx context.Context, token, userID, packageName string) (*telemetry.PowerMeterRecord, error)
	Alarms(ctx context.Context, token, userID string, filter upstream.Filter) ([]telemetry.AlarmRecord, error)
	CellParameters(ctx context.Context, token, userID, packageName string) ([]telemetry.CellParameterRecord, error)
	History(ctx context.Context, token, userID string, filter upstream.Filter) ([]telemetry.HistoryPoint, error)
}

// Service fetches device collections for a session, caching each
// (collection, user) pair. Every widget endpoint is isolated: a failure on
// one collection never disturbs another.
type Service struct {
	client    TelemetryClient
	store     cache.Store
	ttl       time.Duration
	collector metrics.Collector
}

// NewService creates a new dashboard service
func NewService(client TelemetryClient, store cache.Store, ttl time.Duration, collector metrics.Collector) *Service {
	if collector == nil {
		collector = metrics.Noop()
	}
	return &Service{
		client:    client,
		store:     store,
		ttl:       ttl,
		collector: collector,
	}
}

// Batteries returns the battery collection for the session's user. The
// second return value reports whether the payload is stale, i.e. served
// from the last good copy because the platform is currently failing.
func (s *Service) Batteries(ctx context.Context, sess *domainSession.Session, refresh bool) ([]telemetry.BatteryRecord, bool, error) {
	var records []telemetry.BatteryRecord
	stale, err := s.cached(ctx, sess, string(telemetry.CollectionBatteries), "", refresh, &records, func() (interface{}, error) {
		return s.client.Batteries(ctx, sess.UpstreamToken, sess.UserID)
	})
	return records, stale, err
}

// FleetSummary fetches the battery collection and aggregates it. A nil
// summary means the fleet is empty.
func (s *Service) FleetSummary(ctx context.Context, sess *domainSession.Session, refresh bool) (*fleet.Summary, bool, error) {
	records, stale, err := s.Batteries(ctx, sess, refresh)
	if err != nil {
		return nil, stale, err
	}
	return fleet.Summarize(records), stale, nil
}

// Gensets returns the genset collection for the session's user.
func (s *Service) Gensets(ctx context.Context, sess *domainSession.Session, refresh bool) ([]telemetry.GensetRecord, bool, error) {
	var records []telemetry.GensetRecord
	stale, err := s.cached(ctx, sess, string(telemetry.CollectionGensets), "", refresh, &records, func() (interface{}, error) {
		return s.client.Gensets(ctx, sess.UpstreamToken, sess.UserID)
	})
	return records, stale, err
}

// PowerMeters returns the power-meter collection for the session's user.
func (s *Service) PowerMeters(ctx context.Context, sess *domainSession.Session, refresh bool) ([]telemetry.PowerMeterRecord, bool, error) {
	var records []telemetry.PowerMeterRecord
	stale, err := s.cached(ctx, sess, string(telemetry.CollectionPowerMeters), "", refresh, &records, func() (interface{}, error) {
		return s.client.PowerMeters(ctx, sess.UpstreamToken, sess.UserID)
	})
	return records, stale, err
}

// Alarms returns alarm events, optionally filtered by package and dates.
func (s *Service) Alarms(ctx context.Context, sess *domainSession.Session, filter upstream.Filter, refresh bool) ([]telemetry.AlarmRecord, bool, error) {
	var records []telemetry.AlarmRecord
	stale, err := s.cached(ctx, sess, string(telemetry.CollectionAlarms), filterSuffix(filter), refresh, &records, func() (interface{}, error) {
		return s.client.Alarms(ctx, sess.UpstreamToken, sess.UserID, filter)
	})
	return records, stale, err
}

// History returns the charge/discharge series for one package.
func (s *Service) History(ctx context.Context, sess *domainSession.Session, filter upstream.Filter, refresh bool) ([]telemetry.HistoryPoint, bool, error) {
	var records []telemetry.HistoryPoint
	stale, err := s.cached(ctx, sess, "history", filterSuffix(filter), refresh, &records, func() (interface{}, error) {
		return s.client.History(ctx, sess.UpstreamToken, sess.UserID, filter)
	})
	return records, stale, err
}

// BatteryDetail returns one battery package, bypassing the cache: detail
// views are rare enough that freshness wins.
func (s *Service) BatteryDetail(ctx context.Context, sess *domainSession.Session, packageName string) (*telemetry.BatteryRecord, error) {
	return s.client.BatteryDetail(ctx, sess.UpstreamToken, sess.UserID, packageName)
}

// GensetDetail returns one genset package.
func (s *Service) GensetDetail(ctx context.Context, sess *domainSession.Session, packageName string) (*telemetry.GensetRecord, error) {
	return s.client.GensetDetail(ctx, sess.UpstreamToken, sess.UserID, packageName)
}

// PowerMeterDetail returns one power-meter package.
func (s *Service) PowerMeterDetail(ctx context.Context, sess *domainSession.Session, packageName string) (*telemetry.PowerMeterRecord, error) {
	return s.client.PowerMeterDetail(ctx, sess.UpstreamToken, sess.UserID, packageName)
}

// CellParameters returns per-cell readings for one battery package.
func (s *Service) CellParameters(ctx context.Context, sess *domainSession.Session, packageName string) ([]telemetry.CellParameterRecord, error) {
	return s.client.CellParameters(ctx, sess.UpstreamToken, sess.UserID, packageName)
}

// InvalidateUser drops every fresh cached collection for a user. Called
// after a binding change and by the alarm push listener. Last-good copies
// are kept so the stale fallback still works during outages.
func (s *Service) InvalidateUser(ctx context.Context, userID string) error {
	return s.store.DeleteByPrefix(ctx, cache.Key(freshPrefix, userID))
}

func (s *Service) cached(
	ctx context.Context,
	sess *domainSession.Session,
	collection, suffix string,
	refresh bool,
	out interface{},
	fetch func() (interface{}, error),
) (bool, error) {
	freshKey := cache.Key(freshPrefix, sess.UserID, collection, suffix)
	lastKey := cache.Key(lastPrefix, sess.UserID, collection, suffix)

	if refresh {
		if err := s.store.Delete(ctx, freshKey); err != nil {
			logger.Warn("Failed to invalidate cache entry",
				zap.String("key", freshKey),
				zap.Error(err),
			)
		}
	} else {
		if payload, ok, err := s.store.Get(ctx, freshKey); err == nil && ok {
			s.collector.IncCacheHit(collection)
			return false, json.Unmarshal(payload, out)
		}
	}
	s.collector.IncCacheMiss(collection)

	result, err := fetch()
	if err != nil {
		// Upstream failure: fall back to the last good payload if one
		// exists, surfacing the staleness to the caller.
		if payload, ok, cacheErr := s.store.Get(ctx, lastKey); cacheErr == nil && ok {
			logger.Warn("Serving stale telemetry after upstream failure",
				zap.String("collection", collection),
				zap.String("user_id", sess.UserID),
				zap.Error(err),
			)
			if unmarshalErr := json.Unmarshal(payload, out); unmarshalErr == nil {
				return true, nil
			}
		}
		return false, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s payload: %w", collection, err)
	}
	if err := s.store.Set(ctx, freshKey, payload, s.ttl); err != nil {
		logger.Warn("Failed to cache telemetry payload",
			zap.String("key", freshKey),
			zap.Error(err),
		)
	}
	if err := s.store.Set(ctx, lastKey, payload, lastGoodTTL); err != nil {
		logger.Warn("Failed to store last-good payload",
			zap.String("key", lastKey),
			zap.Error(err),
		)
	}

	return false, json.Unmarshal(payload, out)
}

func filterSuffix(filter upstream.Filter) string {
	return cache.Key(filter.PackageName, filter.StartDate, filter.EndDate)
}
