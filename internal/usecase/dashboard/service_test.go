package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetview/internal/cache"
	domainSession "fleetview/internal/domain/session"
	"fleetview/internal/domain/telemetry"
	"fleetview/internal/logger"
	"fleetview/internal/upstream"
)

func TestMain(m *testing.M) {
	_ = logger.Init("development")
	m.Run()
}

type fakeClient struct {
	batteries     []telemetry.BatteryRecord
	batteriesErr  error
	batteryCalls  int
	gensets       []telemetry.GensetRecord
	gensetsErr    error
	gensetCalls   int
	alarms        []telemetry.AlarmRecord
	alarmCalls    int
	historyPoints []telemetry.HistoryPoint
	historyCalls  int
}

func (f *fakeClient) Batteries(context.Context, string, string) ([]telemetry.BatteryRecord, error) {
	f.batteryCalls++
	return f.batteries, f.batteriesErr
}

func (f *fakeClient) BatteryDetail(context.Context, string, string, string) (*telemetry.BatteryRecord, error) {
	if len(f.batteries) == 0 {
		return nil, errors.New("not found")
	}
	return &f.batteries[0], nil
}

func (f *fakeClient) Gensets(context.Context, string, string) ([]telemetry.GensetRecord, error) {
	f.gensetCalls++
	return f.gensets, f.gensetsErr
}

func (f *fakeClient) GensetDetail(context.Context, string, string, string) (*telemetry.GensetRecord, error) {
	return nil, errors.New("not found")
}

func (f *fakeClient) PowerMeters(context.Context, string, string) ([]telemetry.PowerMeterRecord, error) {
	return nil, nil
}

func (f *fakeClient) PowerMeterDetail(context.Context, string, string, string) (*telemetry.PowerMeterRecord, error) {
	return nil, errors.New("not found")
}

func (f *fakeClient) Alarms(context.Context, string, string, upstream.Filter) ([]telemetry.AlarmRecord, error) {
	f.alarmCalls++
	return f.alarms, nil
}

func (f *fakeClient) CellParameters(context.Context, string, string, string) ([]telemetry.CellParameterRecord, error) {
	return nil, nil
}

func (f *fakeClient) History(context.Context, string, string, upstream.Filter) ([]telemetry.HistoryPoint, error) {
	f.historyCalls++
	return f.historyPoints, nil
}

func testSession() *domainSession.Session {
	return &domainSession.Session{
		UserID:        "u-9",
		Username:      "ops",
		UpstreamToken: "tok",
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

func newTestService(client TelemetryClient) *Service {
	return NewService(client, cache.NewMemoryStore(), time.Minute, nil)
}

func TestBatteriesCachedPerUser(t *testing.T) {
	client := &fakeClient{batteries: []telemetry.BatteryRecord{{PackageName: "PKG-001"}}}
	svc := newTestService(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		records, stale, err := svc.Batteries(ctx, testSession(), false)
		require.NoError(t, err)
		assert.False(t, stale)
		require.Len(t, records, 1)
	}

	assert.Equal(t, 1, client.batteryCalls, "repeat reads must hit the cache")
}

func TestRefreshBypassesCache(t *testing.T) {
	client := &fakeClient{batteries: []telemetry.BatteryRecord{{PackageName: "PKG-001"}}}
	svc := newTestService(client)
	ctx := context.Background()

	_, _, err := svc.Batteries(ctx, testSession(), false)
	require.NoError(t, err)
	_, _, err = svc.Batteries(ctx, testSession(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, client.batteryCalls)
}

func TestStaleWhileError(t *testing.T) {
	client := &fakeClient{batteries: []telemetry.BatteryRecord{{PackageName: "PKG-001", SOC: "50"}}}
	svc := newTestService(client)
	ctx := context.Background()

	_, _, err := svc.Batteries(ctx, testSession(), false)
	require.NoError(t, err)

	// Upstream starts failing; a refresh must serve the last good copy.
	client.batteriesErr = errors.New("gateway timeout")
	records, stale, err := svc.Batteries(ctx, testSession(), true)
	require.NoError(t, err)
	assert.True(t, stale)
	require.Len(t, records, 1)
	assert.Equal(t, "PKG-001", records[0].PackageName)
}

func TestErrorWithoutLastGoodCopySurfaces(t *testing.T) {
	client := &fakeClient{batteriesErr: errors.New("gateway timeout")}
	svc := newTestService(client)

	_, stale, err := svc.Batteries(context.Background(), testSession(), false)
	assert.Error(t, err)
	assert.False(t, stale)
}

func TestCollectionsAreIsolated(t *testing.T) {
	client := &fakeClient{
		batteries:  []telemetry.BatteryRecord{{PackageName: "PKG-001"}},
		gensetsErr: errors.New("genset endpoint down"),
	}
	svc := newTestService(client)
	ctx := context.Background()

	_, _, err := svc.Gensets(ctx, testSession(), false)
	assert.Error(t, err)

	records, _, err := svc.Batteries(ctx, testSession(), false)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFleetSummaryAggregatesBatteries(t *testing.T) {
	client := &fakeClient{batteries: []telemetry.BatteryRecord{
		{PackageName: "PKG-001", StatusBinding: telemetry.StatusBound, SOC: "15"},
		{PackageName: "PKG-002", StatusBinding: telemetry.StatusUnbound},
	}}
	svc := newTestService(client)

	summary, stale, err := svc.FleetSummary(context.Background(), testSession(), false)
	require.NoError(t, err)
	assert.False(t, stale)
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.TotalBatteries)
	assert.Equal(t, 1, summary.SOCCategories.Critical)
}

func TestFleetSummaryEmptyFleetIsNil(t *testing.T) {
	svc := newTestService(&fakeClient{})

	summary, _, err := svc.FleetSummary(context.Background(), testSession(), false)
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestInvalidateUserForcesRefetch(t *testing.T) {
	client := &fakeClient{batteries: []telemetry.BatteryRecord{{PackageName: "PKG-001"}}}
	svc := newTestService(client)
	ctx := context.Background()

	_, _, err := svc.Batteries(ctx, testSession(), false)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateUser(ctx, "u-9"))

	_, _, err = svc.Batteries(ctx, testSession(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, client.batteryCalls)
}

func TestHistoryCacheKeyIncludesFilter(t *testing.T) {
	client := &fakeClient{historyPoints: []telemetry.HistoryPoint{{PackageName: "PKG-001"}}}
	svc := newTestService(client)
	ctx := context.Background()

	augFilter := upstream.Filter{PackageName: "PKG-001", StartDate: "2026-08-01", EndDate: "2026-08-31"}
	julFilter := upstream.Filter{PackageName: "PKG-001", StartDate: "2026-07-01", EndDate: "2026-07-31"}

	_, _, err := svc.History(ctx, testSession(), augFilter, false)
	require.NoError(t, err)
	_, _, err = svc.History(ctx, testSession(), julFilter, false)
	require.NoError(t, err)
	_, _, err = svc.History(ctx, testSession(), augFilter, false)
	require.NoError(t, err)

	assert.Equal(t, 2, client.historyCalls)
}
