package services

import (
	"context"
	"testing"
	"time"
	"walking-route-service/internal/adapters/routing"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRegistry(clock clockwork.Clock, metrics *obs.Metrics) *SessionRegistry {
	factory := func() *RouteSearchWorkflow {
		return newWorkflow(plazaGeocoder(), routing.NewMockRouter(plazaRoute, nil))
	}
	return NewSessionRegistry(factory, 10*time.Minute, clock, metrics, zap.NewNop())
}

func TestSessionRegistryLifecycle(t *testing.T) {
	m := obs.NewMetricsForTesting()
	r := newRegistry(clockwork.NewFakeClock(), m)

	a := r.Create()
	b := r.Create()
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotSame(t, a.Workflow, b.Workflow)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsActive))

	got, err := r.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, r.Delete(a.ID))
	_, err = r.Get(a.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, r.Delete(a.ID), domain.ErrSessionNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
}

func TestSessionsAreIsolated(t *testing.T) {
	r := newRegistry(clockwork.NewFakeClock(), nil)
	a, b := r.Create(), r.Create()

	a.Workflow.SetOrigin(origin)
	_, err := a.Workflow.Search(context.Background(), "Plaza Mayor")
	require.NoError(t, err)

	assert.Equal(t, domain.SearchState{}, b.Workflow.State())
}

func TestSessionRegistrySweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := newRegistry(clock, nil)

	idle := r.Create()
	active := r.Create()

	clock.Advance(6 * time.Minute)
	_, err := r.Get(active.ID)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, r.Sweep())

	_, err = r.Get(idle.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = r.Get(active.ID)
	assert.NoError(t, err)
}

func TestSessionRegistryRun(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := newRegistry(clock, nil)
	r.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, time.Minute) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(11 * time.Minute)

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
