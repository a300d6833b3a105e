package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"vacai/internal/domain"
	"vacai/internal/domain/models"
	"vacai/internal/event"
	"vacai/internal/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func hopsNamed(names ...string) []models.ItineraryHop {
	out := make([]models.ItineraryHop, len(names))
	for i, n := range names {
		out[i] = models.ItineraryHop{Type: models.HopActivity, Name: n}
	}
	return out
}

func newTimeline(t *testing.T, ttl time.Duration) (*TimelineService, *AgentStateService, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	agents := NewAgentStateService(newMemAgentStates(), bus, "")
	cfg := layout.DefaultConfig()
	cfg.NodeWidth = 160
	tl := NewTimelineService(agents, bus, cfg, ttl)
	require.NoError(t, tl.Start())
	t.Cleanup(func() {
		tl.Close()
		_ = bus.Close()
	})
	return tl, agents, bus
}

func TestTimelineViewFollowsAgentState(t *testing.T) {
	tl, agents, _ := newTimeline(t, time.Minute)
	ctx := context.Background()

	_, err := agents.Replace(ctx, caller.UID, "", OriginAgent, stateOf(hopsNamed("a", "b", "c")...))
	require.NoError(t, err)

	view, err := tl.Open(ctx, caller, "", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Version)
	assert.Equal(t, []int{3}, view.Layout.RowLengths())

	_, err = agents.Replace(ctx, caller.UID, "", OriginAgent, stateOf(hopsNamed("a", "b", "c", "d", "e", "f", "g", "h")...))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := tl.Get(caller, view.ID)
		return err == nil && snap.Version == 2
	}, 2*time.Second, 10*time.Millisecond)

	snap, err := tl.Get(caller, view.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 2}, snap.Layout.RowLengths())
	assert.Equal(t, []int{5, 4, 3}, snap.Layout.Rows[1].Display)
}

func TestTimelineToggleSurvivesResize(t *testing.T) {
	tl, agents, _ := newTimeline(t, time.Minute)
	ctx := context.Background()
	_, err := agents.Replace(ctx, caller.UID, "", OriginAgent, stateOf(hopsNamed("a", "b", "c", "d", "e")...))
	require.NoError(t, err)

	view, err := tl.Open(ctx, caller, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Layout.RowCapacity)

	snap, err := tl.Toggle(caller, view.ID, 4)
	require.NoError(t, err)
	require.NotNil(t, snap.Expanded)

	snap, err = tl.Resize(caller, view.ID, 800)
	require.NoError(t, err)
	require.NotNil(t, snap.Expanded)
	assert.Equal(t, 4, *snap.Expanded)
	assert.Equal(t, 5, snap.Layout.RowCapacity)

	_, err = tl.Toggle(caller, view.ID, 5)
	assert.True(t, domain.IsValidation(err))
}

func TestTimelineViewsArePrivate(t *testing.T) {
	tl, _, _ := newTimeline(t, time.Minute)
	view, err := tl.Open(context.Background(), caller, "", 300)
	require.NoError(t, err)

	stranger := domain.RequestContext{UID: "uid-2"}
	_, err = tl.Get(stranger, view.ID)
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(tl.CloseView(stranger, view.ID)))

	_, err = tl.Open(context.Background(), domain.RequestContext{}, "", 300)
	assert.True(t, domain.IsUnauthorized(err))
}

func TestTimelineCloseView(t *testing.T) {
	tl, _, _ := newTimeline(t, time.Minute)
	view, err := tl.Open(context.Background(), caller, "", 300)
	require.NoError(t, err)
	done := tl.Done(view.ID)
	require.NotNil(t, done)

	require.NoError(t, tl.CloseView(caller, view.ID))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("view was not torn down")
	}
	_, err = tl.Get(caller, view.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestTimelineResizeRacingCloseNeverRevivesView(t *testing.T) {
	tl, _, _ := newTimeline(t, time.Minute)
	ctx := context.Background()

	for round := 0; round < 200; round++ {
		view, err := tl.Open(ctx, caller, "", 300)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					_, _ = tl.Resize(caller, view.ID, float64(100*(i+j)))
				}
			}(i)
		}
		require.NoError(t, tl.CloseView(caller, view.ID))
		wg.Wait()

		_, err = tl.Get(caller, view.ID)
		require.True(t, domain.IsNotFound(err), "round %d: closed view still served", round)
		require.Zero(t, tl.Count(), "round %d: closed view still registered", round)
	}
}

func TestTimelineTornDownViewIsNotServed(t *testing.T) {
	tl, _, _ := newTimeline(t, time.Minute)
	view, err := tl.Open(context.Background(), caller, "", 300)
	require.NoError(t, err)

	item, ok := tl.views.Get(view.ID)
	require.True(t, ok)
	item.(*timelineView).close()

	_, err = tl.Resize(caller, view.ID, 800)
	assert.True(t, domain.IsNotFound(err))
	assert.Zero(t, tl.Count())
}

func TestTimelineSignOutClosesUserViews(t *testing.T) {
	tl, _, bus := newTimeline(t, time.Minute)
	mine, err := tl.Open(context.Background(), caller, "", 300)
	require.NoError(t, err)
	other := domain.RequestContext{UID: "uid-2"}
	theirs, err := tl.Open(context.Background(), other, "", 300)
	require.NoError(t, err)
	done := tl.Done(mine.ID)

	require.NoError(t, bus.Publish(event.AuthState, caller.UID, event.AuthChange{UID: caller.UID, SignedIn: false}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("view survived sign-out")
	}
	_, err = tl.Get(other, theirs.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, tl.Count())
}

func TestTimelineIdleViewsExpire(t *testing.T) {
	tl, _, _ := newTimeline(t, 50*time.Millisecond)
	view, err := tl.Open(context.Background(), caller, "", 300)
	require.NoError(t, err)
	done := tl.Done(view.ID)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("idle view was not evicted")
	}
}

func TestTimelineCloseLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bus := event.NewBus()
	agents := NewAgentStateService(newMemAgentStates(), bus, "")
	tl := NewTimelineService(agents, bus, layout.DefaultConfig(), time.Minute)
	require.NoError(t, tl.Start())
	for i := 0; i < 3; i++ {
		_, err := tl.Open(context.Background(), caller, "", 400)
		require.NoError(t, err)
	}
	tl.Close()
	require.NoError(t, bus.Close())
}

func TestTimelineStatelessLayouts(t *testing.T) {
	tl, agents, _ := newTimeline(t, time.Minute)
	ctx := context.Background()
	_, err := agents.Replace(ctx, caller.UID, "", OriginAgent, stateOf(hopsNamed("a", "b")...))
	require.NoError(t, err)

	res, err := tl.Layout(ctx, caller, "", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Version)
	assert.Len(t, res.Layout.Nodes, 2)

	res, err = tl.ComputeLayout([]models.ItineraryHop{{Type: "boat", Name: " Ferry "}}, 0)
	require.NoError(t, err)
	assert.Equal(t, models.HopOther, res.Hops[0].Type)
	assert.Equal(t, "Ferry", res.Hops[0].Name)

	_, err = tl.ComputeLayout([]models.ItineraryHop{{Name: ""}}, 0)
	assert.True(t, domain.IsValidation(err))
}
