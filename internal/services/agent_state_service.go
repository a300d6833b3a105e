package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"vacai/internal/domain"
	"vacai/internal/domain/models"
	"vacai/internal/event"
	"vacai/internal/repositories"
	"vacai/internal/utils"
)

const (
	DefaultAgentName = "my_agent"

	OriginClient = "client"
	OriginAgent  = "agent"

	maxHops = 200
)

type AgentStateStore interface {
	Get(ctx context.Context, uid, name string) (repositories.AgentStateRecord, bool, error)
	Save(ctx context.Context, rec repositories.AgentStateRecord) error
}

type EventBus interface {
	Publish(topic event.Topic, key string, payload any) error
	Subscribe(ctx context.Context, topic event.Topic) (<-chan event.Event, func(), error)
}

// AgentStateSnapshot is one version of a user's shared state with an agent.
type AgentStateSnapshot struct {
	Agent     string            `json:"agent"`
	Version   int64             `json:"version"`
	State     models.AgentState `json:"state"`
	UpdatedAt *time.Time        `json:"updatedAt,omitempty"`
}

// AgentStateService keeps the named shared-state objects in sync between a
// user's client and the external agent process. Replacements are
// serialized so versions increase by exactly one.
type AgentStateService struct {
	store        AgentStateStore
	bus          EventBus
	defaultAgent string
	now          func() time.Time

	mu sync.Mutex
}

func NewAgentStateService(store AgentStateStore, bus EventBus, defaultAgent string) *AgentStateService {
	return &AgentStateService{
		store:        store,
		bus:          bus,
		defaultAgent: utils.Fallback(defaultAgent, DefaultAgentName),
		now:          utils.NowUTC,
	}
}

func (s *AgentStateService) DefaultAgent() string { return s.defaultAgent }

// AgentName resolves a requested name, blank meaning the default agent.
func (s *AgentStateService) AgentName(name string) (string, error) {
	name = utils.Fallback(name, s.defaultAgent)
	if err := validateAgentName(name); err != nil {
		return "", err
	}
	return name, nil
}

// Get never reports a missing state: it returns an empty itinerary at version 0.
func (s *AgentStateService) Get(ctx context.Context, uid, name string) (AgentStateSnapshot, error) {
	name, err := s.AgentName(name)
	if err != nil {
		return AgentStateSnapshot{}, err
	}
	rec, found, err := s.store.Get(ctx, uid, name)
	if err != nil {
		return AgentStateSnapshot{}, domain.InternalError{Msg: "failed to read agent state", Err: err}
	}
	if !found {
		return AgentStateSnapshot{Agent: name, State: emptyState()}, nil
	}
	return snapshotOf(rec), nil
}

// Replace validates and stores a whole new state, then notifies subscribers.
func (s *AgentStateService) Replace(ctx context.Context, uid, name, origin string, in models.AgentState) (AgentStateSnapshot, error) {
	if strings.TrimSpace(uid) == "" {
		return AgentStateSnapshot{}, domain.ValidationError{Field: "uid", Msg: "required"}
	}
	name, err := s.AgentName(name)
	if err != nil {
		return AgentStateSnapshot{}, err
	}
	state, err := NormalizeAgentState(in)
	if err != nil {
		return AgentStateSnapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.store.Get(ctx, uid, name)
	if err != nil {
		return AgentStateSnapshot{}, domain.InternalError{Msg: "failed to read agent state", Err: err}
	}
	rec := repositories.AgentStateRecord{
		UserUID:   uid,
		AgentName: name,
		State:     state,
		Version:   current.Version + 1,
		UpdatedAt: s.now(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return AgentStateSnapshot{}, domain.InternalError{Msg: "failed to save agent state", Err: err}
	}

	change := event.AgentStateChange{
		UID:       uid,
		Agent:     name,
		Version:   rec.Version,
		Origin:    origin,
		State:     rec.State,
		UpdatedAt: rec.UpdatedAt,
	}
	if err := s.bus.Publish(event.AgentState, uid, change); err != nil {
		utils.LogError("", "agent_state", "publish", err)
	}
	utils.LogEvent("", "agent_state", "replace",
		fmt.Sprintf("uid=%s agent=%s version=%d hops=%d origin=%s", uid, name, rec.Version, len(state.Itinerary.Hops), origin))
	return snapshotOf(rec), nil
}

// Subscribe streams every newer version of (uid, name). Events arriving out
// of order are dropped. The channel closes when unsubscribe is called or
// ctx is done.
func (s *AgentStateService) Subscribe(ctx context.Context, uid, name string) (<-chan AgentStateSnapshot, func(), error) {
	name, err := s.AgentName(name)
	if err != nil {
		return nil, func() {}, err
	}
	events, unsubscribe, err := s.bus.Subscribe(ctx, event.AgentState)
	if err != nil {
		return nil, func() {}, err
	}

	out := make(chan AgentStateSnapshot, 8)
	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(stop)
			unsubscribe()
		})
	}

	go func() {
		defer close(out)
		var last int64
		for ev := range events {
			if ev.Key != uid {
				continue
			}
			var change event.AgentStateChange
			if err := ev.Decode(&change); err != nil || change.Agent != name {
				continue
			}
			if change.Version <= last {
				continue
			}
			last = change.Version
			updated := change.UpdatedAt
			snap := AgentStateSnapshot{Agent: change.Agent, Version: change.Version, State: change.State, UpdatedAt: &updated}
			select {
			case out <- snap:
			case <-stop:
				return
			}
		}
	}()
	return out, cancel, nil
}

// NormalizeAgentState validates incoming hops: names are required, unknown
// types become "other" and text fields are trimmed.
func NormalizeAgentState(in models.AgentState) (models.AgentState, error) {
	hops := in.Itinerary.Hops
	if len(hops) > maxHops {
		return models.AgentState{}, domain.ValidationError{Field: "itinerary.hops", Msg: fmt.Sprintf("at most %d hops", maxHops)}
	}
	out := make([]models.ItineraryHop, 0, len(hops))
	for i, h := range hops {
		hop := models.ItineraryHop{
			Type:     models.ParseHopType(string(h.Type)),
			Name:     utils.NormalizeSpace(h.Name),
			Details:  strings.TrimSpace(h.Details),
			Date:     utils.NormalizeSpace(h.Date),
			Time:     utils.NormalizeSpace(h.Time),
			Location: utils.NormalizeSpace(h.Location),
		}
		if hop.Name == "" {
			return models.AgentState{}, domain.ValidationError{Field: fmt.Sprintf("itinerary.hops[%d].name", i), Msg: "required"}
		}
		out = append(out, hop)
	}
	return models.AgentState{Itinerary: models.Itinerary{Hops: out}}, nil
}

func emptyState() models.AgentState {
	return models.AgentState{Itinerary: models.Itinerary{Hops: []models.ItineraryHop{}}}
}

func snapshotOf(rec repositories.AgentStateRecord) AgentStateSnapshot {
	state := models.AgentState{Itinerary: rec.State.Itinerary.Clone()}
	snap := AgentStateSnapshot{Agent: rec.AgentName, Version: rec.Version, State: state}
	if !rec.UpdatedAt.IsZero() {
		updated := rec.UpdatedAt
		snap.UpdatedAt = &updated
	}
	return snap
}
