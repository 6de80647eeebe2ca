package ingestion

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetview/internal/logger"
	"fleetview/internal/metrics"
)

func TestMain(m *testing.M) {
	_ = logger.Init("development")
	os.Exit(m.Run())
}

type fakeInvalidator struct {
	calls []string
	err   error
}

func (f *fakeInvalidator) InvalidateUser(_ context.Context, userID string) error {
	f.calls = append(f.calls, userID)
	return f.err
}

func TestParseAlarmMessage(t *testing.T) {
	msg, err := ParseAlarmMessage([]byte(`{"id_user":" u-1 ","package_name":"PKG-001","alarm_type":"overtemp"}`))
	require.NoError(t, err)
	assert.Equal(t, "u-1", msg.IDUser)
	assert.Equal(t, "PKG-001", msg.PackageName)
	assert.Equal(t, "overtemp", msg.AlarmType)
}

func TestParseAlarmMessageRejectsMissingUser(t *testing.T) {
	_, err := ParseAlarmMessage([]byte(`{"package_name":"PKG-001"}`))
	assert.Error(t, err)
}

func TestParseAlarmMessageRejectsMalformedJSON(t *testing.T) {
	_, err := ParseAlarmMessage([]byte(`{not json`))
	assert.Error(t, err)
}

func TestHandleAlarmMessageInvalidatesUser(t *testing.T) {
	inv := &fakeInvalidator{}
	listener := &AlarmListener{invalidator: inv, collector: metrics.Noop()}

	listener.handleAlarmMessage("alarms/push", []byte(`{"id_user":"u-7","package_name":"PKG-002"}`))

	assert.Equal(t, []string{"u-7"}, inv.calls)
}

func TestHandleAlarmMessageSkipsInvalidPayload(t *testing.T) {
	inv := &fakeInvalidator{}
	listener := &AlarmListener{invalidator: inv, collector: metrics.Noop()}

	listener.handleAlarmMessage("alarms/push", []byte(`garbage`))

	assert.Empty(t, inv.calls)
}

func TestHandleAlarmMessageToleratesInvalidationError(t *testing.T) {
	inv := &fakeInvalidator{err: errors.New("store down")}
	listener := &AlarmListener{invalidator: inv, collector: metrics.Noop()}

	listener.handleAlarmMessage("alarms/push", []byte(`{"id_user":"u-7"}`))

	assert.Len(t, inv.calls, 1)
}
