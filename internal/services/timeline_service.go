package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vacai/internal/domain"
	"vacai/internal/domain/models"
	"vacai/internal/event"
	"vacai/internal/layout"
	"vacai/internal/utils"

	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"
)

const DefaultViewIdleTTL = 30 * time.Minute

// ViewSnapshot is what clients render: the layout plus the agent state
// version it was computed from.
type ViewSnapshot struct {
	ID      string `json:"id"`
	Agent   string `json:"agent"`
	Version int64  `json:"version"`
	layout.Snapshot
}

// LayoutResult is a one-off layout without a server-held view.
type LayoutResult struct {
	Agent   string                `json:"agent,omitempty"`
	Version int64                 `json:"version"`
	Hops    []models.ItineraryHop `json:"hops"`
	Layout  layout.Layout         `json:"layout"`
}

// TimelineService holds itinerary views bound to a user's agent state. A view
// is torn down when it is closed, when it has been idle for the configured
// TTL, or when its owner signs out. Teardown always ends the state
// subscription.
type TimelineService struct {
	agents *AgentStateService
	bus    EventBus
	cfg    layout.Config
	ttl    time.Duration
	sweep  time.Duration

	views  *cache.Cache
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type timelineView struct {
	id    string
	uid   string
	agent string
	view  *layout.View

	mu      sync.Mutex
	version int64

	stop      func()
	closeOnce sync.Once
	done      chan struct{}
}

func NewTimelineService(agents *AgentStateService, bus EventBus, cfg layout.Config, idleTTL time.Duration) *TimelineService {
	if idleTTL <= 0 {
		idleTTL = DefaultViewIdleTTL
	}
	sweep := idleTTL / 2
	if sweep < 10*time.Millisecond {
		sweep = 10 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &TimelineService{
		agents: agents,
		bus:    bus,
		cfg:    cfg,
		ttl:    idleTTL,
		sweep:  sweep,
		views:  cache.New(idleTTL, 0),
		ctx:    ctx,
		cancel: cancel,
	}
	s.views.OnEvicted(func(id string, v any) {
		if tv, ok := v.(*timelineView); ok {
			tv.close()
			utils.LogEvent("", "timeline", "close_view", "id="+id)
		}
	})
	return s
}

// Start follows auth state so a signed-out user's views are torn down, and
// sweeps idle views until Close.
func (s *TimelineService) Start() error {
	events, unsubscribe, err := s.bus.Subscribe(s.ctx, event.AuthState)
	if err != nil {
		return fmt.Errorf("subscribe auth state: %w", err)
	}
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.views.DeleteExpired()
			}
		}
	}()
	go func() {
		defer s.wg.Done()
		defer unsubscribe()
		for ev := range events {
			var change event.AuthChange
			if err := ev.Decode(&change); err != nil {
				continue
			}
			if !change.SignedIn {
				s.closeUser(change.UID)
			}
		}
	}()
	return nil
}

// Close tears down every view and stops the auth watcher.
func (s *TimelineService) Close() {
	s.cancel()
	s.views.DeleteExpired()
	for id := range s.views.Items() {
		s.views.Delete(id)
	}
	s.wg.Wait()
}

func (s *TimelineService) Open(ctx context.Context, caller domain.RequestContext, agent string, width float64) (ViewSnapshot, error) {
	if !caller.Authenticated() {
		return ViewSnapshot{}, domain.UnauthorizedError{Msg: "sign in required"}
	}
	agent, err := s.agents.AgentName(agent)
	if err != nil {
		return ViewSnapshot{}, err
	}
	if s.ctx.Err() != nil {
		return ViewSnapshot{}, domain.InternalError{Msg: "timeline service stopped"}
	}

	// Subscribe before reading so no version is missed in between.
	updates, stop, err := s.agents.Subscribe(s.ctx, caller.UID, agent)
	if err != nil {
		return ViewSnapshot{}, domain.InternalError{Msg: "failed to follow agent state", Err: err}
	}
	current, err := s.agents.Get(ctx, caller.UID, agent)
	if err != nil {
		stop()
		return ViewSnapshot{}, err
	}

	tv := &timelineView{
		id:    ulid.Make().String(),
		uid:   caller.UID,
		agent: agent,
		view:  layout.NewView(s.cfg),
		stop:  stop,
		done:  make(chan struct{}),
	}
	tv.view.Resize(width)
	tv.apply(current)

	go func() {
		for snap := range updates {
			tv.apply(snap)
		}
	}()

	s.views.Set(tv.id, tv, s.ttl)
	utils.LogEvent("", "timeline", "open_view", fmt.Sprintf("id=%s uid=%s agent=%s", tv.id, caller.UID, agent))
	return tv.snapshot(), nil
}

func (s *TimelineService) Get(caller domain.RequestContext, id string) (ViewSnapshot, error) {
	tv, err := s.lookup(caller, id)
	if err != nil {
		return ViewSnapshot{}, err
	}
	return tv.snapshot(), nil
}

func (s *TimelineService) Resize(caller domain.RequestContext, id string, width float64) (ViewSnapshot, error) {
	tv, err := s.lookup(caller, id)
	if err != nil {
		return ViewSnapshot{}, err
	}
	tv.view.Resize(width)
	return tv.snapshot(), nil
}

// Toggle expands or collapses the node at storage index.
func (s *TimelineService) Toggle(caller domain.RequestContext, id string, index int) (ViewSnapshot, error) {
	tv, err := s.lookup(caller, id)
	if err != nil {
		return ViewSnapshot{}, err
	}
	if !tv.view.Toggle(index) {
		return ViewSnapshot{}, domain.ValidationError{Field: "index", Msg: fmt.Sprintf("no hop at index %d", index)}
	}
	return tv.snapshot(), nil
}

func (s *TimelineService) CloseView(caller domain.RequestContext, id string) error {
	if _, err := s.lookup(caller, id); err != nil {
		return err
	}
	s.views.Delete(id)
	return nil
}

// Done is closed once the view has been torn down. It returns nil for unknown ids.
func (s *TimelineService) Done(id string) <-chan struct{} {
	v, ok := s.views.Get(id)
	if !ok {
		return nil
	}
	return v.(*timelineView).done
}

// Count is the number of open views.
func (s *TimelineService) Count() int {
	return s.views.ItemCount()
}

// Layout computes a one-off layout of the caller's current itinerary.
func (s *TimelineService) Layout(ctx context.Context, caller domain.RequestContext, agent string, width float64) (LayoutResult, error) {
	snap, err := s.agents.Get(ctx, caller.UID, agent)
	if err != nil {
		return LayoutResult{}, err
	}
	hops := snap.State.Itinerary.Hops
	return LayoutResult{
		Agent:   snap.Agent,
		Version: snap.Version,
		Hops:    hops,
		Layout:  s.cfg.Compute(hops, width),
	}, nil
}

// ComputeLayout lays out hops supplied by the caller after normalizing them.
func (s *TimelineService) ComputeLayout(hops []models.ItineraryHop, width float64) (LayoutResult, error) {
	state, err := NormalizeAgentState(models.AgentState{Itinerary: models.Itinerary{Hops: hops}})
	if err != nil {
		return LayoutResult{}, err
	}
	clean := state.Itinerary.Hops
	return LayoutResult{Hops: clean, Layout: s.cfg.Compute(clean, width)}, nil
}

func (s *TimelineService) lookup(caller domain.RequestContext, id string) (*timelineView, error) {
	v, expiry, ok := s.views.GetWithExpiration(id)
	if !ok {
		return nil, domain.NotFoundError{Resource: "view"}
	}
	tv := v.(*timelineView)
	if tv.uid != caller.UID {
		return nil, domain.NotFoundError{Resource: "view"}
	}
	if tv.closed() {
		s.views.Delete(id)
		return nil, domain.NotFoundError{Resource: "view"}
	}
	// Any access counts as activity. Replace fails once a concurrent close
	// has removed the view, so a torn-down view is never put back.
	if !expiry.IsZero() {
		if err := s.views.Replace(id, tv, s.ttl); err != nil {
			return nil, domain.NotFoundError{Resource: "view", Err: err}
		}
	}
	return tv, nil
}

func (s *TimelineService) closeUser(uid string) {
	closed := 0
	for id, item := range s.views.Items() {
		if tv, ok := item.Object.(*timelineView); ok && tv.uid == uid {
			s.views.Delete(id)
			closed++
		}
	}
	if closed > 0 {
		utils.LogEvent("", "timeline", "sign_out", fmt.Sprintf("uid=%s closed_views=%d", uid, closed))
	}
}

func (tv *timelineView) apply(snap AgentStateSnapshot) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	if snap.Version < tv.version {
		return
	}
	tv.version = snap.Version
	tv.view.SetHops(snap.State.Itinerary.Hops)
}

func (tv *timelineView) snapshot() ViewSnapshot {
	tv.mu.Lock()
	version := tv.version
	tv.mu.Unlock()
	return ViewSnapshot{ID: tv.id, Agent: tv.agent, Version: version, Snapshot: tv.view.Snapshot()}
}

func (tv *timelineView) closed() bool {
	select {
	case <-tv.done:
		return true
	default:
		return false
	}
}

func (tv *timelineView) close() {
	tv.closeOnce.Do(func() {
		tv.stop()
		close(tv.done)
	})
}
