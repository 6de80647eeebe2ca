package binding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainSession "fleetview/internal/domain/session"
	"fleetview/internal/logger"
	"fleetview/internal/upstream"
)

func TestMain(m *testing.M) {
	_ = logger.Init("development")
	m.Run()
}

type fakeBinder struct {
	requests []upstream.BindingRequest
	err      error
}

func (b *fakeBinder) Bind(_ context.Context, _ string, req *upstream.BindingRequest) error {
	if b.err != nil {
		return b.err
	}
	b.requests = append(b.requests, *req)
	return nil
}

type fakeInvalidator struct {
	users []string
}

func (i *fakeInvalidator) InvalidateUser(_ context.Context, userID string) error {
	i.users = append(i.users, userID)
	return nil
}

func testSession() *domainSession.Session {
	return &domainSession.Session{
		UserID:        "u-9",
		UpstreamToken: "tok",
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

func TestBindForwardsAndInvalidates(t *testing.T) {
	binder := &fakeBinder{}
	inv := &fakeInvalidator{}
	svc := NewService(binder, inv)

	err := svc.Bind(context.Background(), testSession(), &BindRequest{PackageName: "PKG-001"})
	require.NoError(t, err)

	require.Len(t, binder.requests, 1)
	assert.Equal(t, "PKG-001", binder.requests[0].PackageName)
	assert.Equal(t, "u-9", binder.requests[0].IDUser)
	assert.Equal(t, "1", binder.requests[0].StatusBinding)
	assert.Equal(t, []string{"u-9"}, inv.users)
}

func TestUnbindSendsStatusZero(t *testing.T) {
	binder := &fakeBinder{}
	svc := NewService(binder, &fakeInvalidator{})

	err := svc.Unbind(context.Background(), testSession(), &BindRequest{PackageName: "PKG-001"})
	require.NoError(t, err)
	require.Len(t, binder.requests, 1)
	assert.Equal(t, "0", binder.requests[0].StatusBinding)
}

func TestBindSanitizesPackageName(t *testing.T) {
	binder := &fakeBinder{}
	svc := NewService(binder, &fakeInvalidator{})

	err := svc.Bind(context.Background(), testSession(), &BindRequest{PackageName: "  PKG-001<script>  "})
	require.NoError(t, err)
	require.Len(t, binder.requests, 1)
	assert.Equal(t, "PKG-001script", binder.requests[0].PackageName)
}

func TestBindRejectsEmptyPackage(t *testing.T) {
	svc := NewService(&fakeBinder{}, &fakeInvalidator{})

	err := svc.Bind(context.Background(), testSession(), &BindRequest{PackageName: "<>"})
	assert.Error(t, err)
}

func TestUpstreamFailureSkipsInvalidation(t *testing.T) {
	inv := &fakeInvalidator{}
	svc := NewService(&fakeBinder{err: errors.New("upstream down")}, inv)

	err := svc.Bind(context.Background(), testSession(), &BindRequest{PackageName: "PKG-001"})
	assert.Error(t, err)
	assert.Empty(t, inv.users)
}
