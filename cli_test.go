package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	intconfig "vacai/internal/config"
	"vacai/internal/domain/models"
	"vacai/internal/layout"
)

func TestParseItineraryJSONForms(t *testing.T) {
	bare := []byte(`{"hops":[{"type":"flight","name":"JFK to LAX","date":"Nov 10"}]}`)
	hops, err := parseItinerary("trip.json", bare)
	if err != nil {
		t.Fatalf("parse bare: %v", err)
	}
	if len(hops) != 1 || hops[0].Type != models.HopFlight {
		t.Fatalf("unexpected hops: %+v", hops)
	}

	wrapped := []byte(`{"itinerary":{"hops":[{"type":"hotel","name":"Inn"},{"type":"train","name":"Acela"}]}}`)
	hops, err = parseItinerary("state.json", wrapped)
	if err != nil {
		t.Fatalf("parse wrapped: %v", err)
	}
	if len(hops) != 2 || hops[1].Name != "Acela" {
		t.Fatalf("unexpected hops: %+v", hops)
	}
}

func TestParseItineraryYAML(t *testing.T) {
	doc := []byte(`
itinerary:
  hops:
    - type: carRental
      name: Hertz
      date: Nov 12
    - type: activity
      name: Broadway
`)
	hops, err := parseItinerary("trip.yml", doc)
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	if len(hops) != 2 || hops[0].Type != models.HopCarRental || hops[1].Name != "Broadway" {
		t.Fatalf("unexpected hops: %+v", hops)
	}
}

func TestParseItineraryRejectsGarbage(t *testing.T) {
	if _, err := parseItinerary("trip.json", []byte("{nope")); err == nil {
		t.Fatalf("expected json error")
	}
	if _, err := parseItinerary("trip.yaml", []byte("hops: [unterminated")); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestLayoutCommandPrintsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trip.json")
	body := `{"hops":[
		{"type":"flight","name":"A"},{"type":"hotel","name":"B"},
		{"type":"train","name":"C"},{"type":"spaceship","name":"D"}]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	t.Setenv("NODE_WIDTH", "170")
	t.Setenv("NODE_HEIGHT", "160")
	layoutFile = path
	layoutWidth = 360
	layoutDirection = "serpentine"
	layoutConnector = ""
	layoutExpanded = -1
	layoutJSON = false
	t.Cleanup(func() { layoutFile = "" })

	var out bytes.Buffer
	layoutCmd.SetOut(&out)
	if err := runLayout(layoutCmd, nil); err != nil {
		t.Fatalf("runLayout: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "4 hops, 2 per row, 2 rows") {
		t.Fatalf("missing summary line: %q", got)
	}
	if !strings.Contains(got, "D") {
		t.Fatalf("missing hop name: %q", got)
	}
}

func TestLayoutConfigUsesEnvSizes(t *testing.T) {
	cfg := layoutConfig(intconfig.Env{NodeWidth: 200, NodeHeight: 120, LayoutDirection: "ltr", LayoutConnector: "straight"})
	if cfg.NodeWidth != 200 || cfg.NodeHeight != 120 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Direction != layout.DirectionLeftToRight || cfg.Connector != layout.ConnectorStraight {
		t.Fatalf("unexpected style: %+v", cfg)
	}

	cfg = layoutConfig(intconfig.Env{})
	if cfg.Direction != layout.DirectionSerpentine || cfg.Connector != layout.ConnectorCurved {
		t.Fatalf("expected serpentine curved defaults: %+v", cfg)
	}
}
