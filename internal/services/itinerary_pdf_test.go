package services

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"vacai/internal/domain/models"
	"vacai/internal/layout"
)

func TestItineraryPDFRender(t *testing.T) {
	hops := []models.ItineraryHop{
		{Type: models.HopFlight, Name: "UA101", Date: "Nov 10", Time: "10:30 AM", Location: "SFO → JFK"},
		{Type: models.HopHotel, Name: "The Plaza", Date: "Nov 10-13", Location: "New York"},
		{Type: models.HopActivity, Name: "Broadway", Date: "Nov 11"},
		{Type: models.HopTrain, Name: "Acela", Date: "Nov 13"},
	}
	svc := ItineraryPDF{Config: layout.DefaultConfig()}

	pdf, filename, err := svc.Render("my agent", hops, 400)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if filename != "ITINERARY_my_agent.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}

	empty, _, err := svc.Render("", nil, 0)
	if err != nil || len(empty) == 0 {
		t.Fatalf("empty itinerary should still render, err=%v", err)
	}
}

func TestItineraryPDFPaginatesLongItineraries(t *testing.T) {
	cfg := layout.DefaultConfig()
	hops := make([]models.ItineraryHop, 40)
	for i := range hops {
		hops[i] = models.ItineraryHop{Type: models.HopActivity, Name: fmt.Sprintf("stop %d", i)}
	}

	// 400 wide fits two 170 nodes per row: 20 rows.
	l := cfg.Compute(hops, 400)
	scale, perPage := pdfPlan(l)
	if perPage != pdfMinRowsPerPage {
		t.Fatalf("expected %d rows per page, got %d", pdfMinRowsPerPage, perPage)
	}
	if labelW := l.NodeWidth * scale; labelW < 60 {
		t.Fatalf("labels squeezed to %.1fmm", labelW)
	}

	short := cfg.Compute(hops[:4], 400)
	_, perPage = pdfPlan(short)
	if perPage < len(short.Rows) {
		t.Fatalf("a short itinerary should fit on one page, got %d rows per page", perPage)
	}

	svc := ItineraryPDF{Config: cfg}
	long, _, err := svc.Render("long trip", hops, 400)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	one, _, err := svc.Render("short trip", hops[:4], 400)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(long) <= len(one) {
		t.Fatalf("expected the long itinerary to produce a larger document")
	}
}

func TestHexRGB(t *testing.T) {
	cases := map[string][3]int{
		"#4C8BF5": {0x4c, 0x8b, 0xf5},
		"#fff":    {255, 255, 255},
		"nope":    {128, 128, 128},
	}
	for in, want := range cases {
		r, g, b := hexRGB(in)
		if [3]int{r, g, b} != want {
			t.Fatalf("hexRGB(%q) = %d,%d,%d", in, r, g, b)
		}
	}
	if !strings.Contains(strings.Join(hopDetailLines(models.ItineraryHop{Type: models.HopTrain, Date: "Nov 1"}), "|"), "train|Nov 1") {
		t.Fatalf("unexpected detail lines")
	}
}
