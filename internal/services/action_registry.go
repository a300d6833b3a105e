package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"vacai/internal/domain"
	"vacai/internal/domain/models"
	"vacai/internal/utils"
)

type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

type ActionKind string

const (
	// ActionHandled runs a server-side handler.
	ActionHandled ActionKind = "handled"
	// ActionRender returns a component descriptor for the client to draw.
	ActionRender ActionKind = "render"
)

type ActionParam struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
}

// ActionFunc receives validated arguments and returns the result props.
type ActionFunc func(ctx context.Context, caller domain.RequestContext, args map[string]any) (map[string]any, error)

type Action struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Available   string        `json:"available"`
	Parameters  []ActionParam `json:"parameters"`
	Kind        ActionKind    `json:"kind"`
	Component   string        `json:"component,omitempty"`
	Run         ActionFunc    `json:"-"`
}

type ActionResult struct {
	Action    string         `json:"action"`
	Kind      ActionKind     `json:"kind"`
	Component string         `json:"component,omitempty"`
	Props     map[string]any `json:"props"`
}

type ActionRegistry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{actions: map[string]Action{}}
}

func (r *ActionRegistry) Register(a Action) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return domain.ValidationError{Field: "name", Msg: "required"}
	}
	if a.Run == nil {
		return domain.ValidationError{Field: "run", Msg: fmt.Sprintf("action %s has no implementation", a.Name)}
	}
	if a.Kind == ActionRender && a.Component == "" {
		return domain.ValidationError{Field: "component", Msg: fmt.Sprintf("render action %s needs a component", a.Name)}
	}
	if a.Available == "" {
		a.Available = "remote"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[a.Name]; exists {
		return domain.ConflictError{Resource: "action", Msg: a.Name + " already registered"}
	}
	r.actions[a.Name] = a
	return nil
}

// List returns actions sorted by name.
func (r *ActionRegistry) List() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *ActionRegistry) Invoke(ctx context.Context, caller domain.RequestContext, name string, args map[string]any) (ActionResult, error) {
	r.mu.RLock()
	a, ok := r.actions[name]
	r.mu.RUnlock()
	if !ok {
		return ActionResult{}, domain.NotFoundError{Resource: "action " + name}
	}
	clean, err := checkArgs(a.Parameters, args)
	if err != nil {
		return ActionResult{}, err
	}
	props, err := a.Run(ctx, caller, clean)
	if err != nil {
		return ActionResult{}, err
	}
	utils.LogEvent("", "actions", "invoke", fmt.Sprintf("action=%s uid=%s", name, caller.UID))
	return ActionResult{Action: a.Name, Kind: a.Kind, Component: a.Component, Props: props}, nil
}

// checkArgs keeps declared parameters only and checks presence and JSON types.
func checkArgs(params []ActionParam, args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for _, p := range params {
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, domain.ValidationError{Field: p.Name, Msg: "required"}
			}
			continue
		}
		switch p.Type {
		case ParamNumber:
			if _, ok := v.(float64); !ok {
				return nil, domain.ValidationError{Field: p.Name, Msg: "must be a number"}
			}
		case ParamBoolean:
			if _, ok := v.(bool); !ok {
				return nil, domain.ValidationError{Field: p.Name, Msg: "must be a boolean"}
			}
		default:
			s, ok := v.(string)
			if !ok {
				return nil, domain.ValidationError{Field: p.Name, Msg: "must be a string"}
			}
			s = strings.TrimSpace(s)
			if s == "" && p.Required {
				return nil, domain.ValidationError{Field: p.Name, Msg: "required"}
			}
			v = s
		}
		out[p.Name] = v
	}
	return out, nil
}

// RegisterBuiltins adds setThemeColor and get_weather.
func RegisterBuiltins(r *ActionRegistry, profiles ProfileService) error {
	setTheme := Action{
		Name:      "setThemeColor",
		Available: "remote",
		Kind:      ActionHandled,
		Parameters: []ActionParam{{
			Name:        "themeColor",
			Type:        ParamString,
			Description: "The theme color to set. Make sure to pick nice colors.",
			Required:    true,
		}},
		Run: func(ctx context.Context, caller domain.RequestContext, args map[string]any) (map[string]any, error) {
			color := args["themeColor"].(string)
			view, err := profiles.Update(ctx, caller.UID, caller.Email, ProfileUpdate{ThemeColor: &color})
			if err != nil {
				return nil, err
			}
			return map[string]any{"themeColor": view.ThemeColor}, nil
		},
	}
	weather := Action{
		Name:        "get_weather",
		Description: "Get the weather for a given location.",
		Available:   "remote",
		Kind:        ActionRender,
		Component:   "WeatherCard",
		Parameters:  []ActionParam{{Name: "location", Type: ParamString, Required: true}},
		Run: func(ctx context.Context, caller domain.RequestContext, args map[string]any) (map[string]any, error) {
			theme := profileTheme(ctx, profiles, caller)
			return map[string]any{
				"location":    args["location"],
				"themeColor":  theme,
				"temperature": "70°",
				"conditions":  "Clear skies",
				"humidity":    "45%",
				"wind":        "5 mph",
				"feelsLike":   "72°",
			}, nil
		},
	}
	for _, a := range []Action{setTheme, weather} {
		if err := r.Register(a); err != nil {
			return err
		}
	}
	return nil
}

func profileTheme(ctx context.Context, profiles ProfileService, caller domain.RequestContext) string {
	if profiles.Store == nil || !caller.Authenticated() {
		return models.DefaultThemeColor
	}
	view, err := profiles.Get(ctx, caller.UID, caller.Email)
	if err != nil {
		utils.LogError("", "actions", "profile_theme", err)
		return models.DefaultThemeColor
	}
	return view.ThemeColor
}
