package services

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"vacai/internal/domain/models"
	"vacai/internal/layout"
	"vacai/internal/utils"

	"github.com/phpdave11/gofpdf"
)

const (
	pdfPageW  = 297.0
	pdfPageH  = 210.0
	pdfMargin = 12.0
	pdfHeader = 18.0

	// Long itineraries are never shrunk below the scale at which this many
	// rows fill one page; the rest continue on further pages.
	pdfMinRowsPerPage = 3
)

// ItineraryPDF draws an itinerary the same way the timeline shows it:
// connectors from the layout engine, one colored circle per hop and a label
// under each node.
type ItineraryPDF struct {
	Config    layout.Config
	RequestID string
}

func (s ItineraryPDF) Render(title string, hops []models.ItineraryHop, width float64) ([]byte, string, error) {
	l := s.Config.Compute(hops, width)
	utils.LogEvent(s.RequestID, "itinerary", "render_pdf", fmt.Sprintf("hops=%d rows=%d", len(hops), len(l.Rows)))

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Itinerary", false)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Itinerary: "+utils.Fallback(title, "trip")))
	pdf.Ln(10)

	if len(hops) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 8, "No hops yet.")
	} else {
		drawLayout(pdf, tr, l, hops)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ITINERARY_%s.pdf", utils.SafeFilenamePart(title))
	return buf.Bytes(), filename, nil
}

// pdfPlan picks the drawing scale and how many rows fit on one page.
func pdfPlan(l layout.Layout) (scale float64, rowsPerPage int) {
	availW := pdfPageW - 2*pdfMargin
	availH := pdfPageH - pdfMargin - pdfHeader
	widthScale := availW / l.CanvasWidth
	scale = math.Min(widthScale, availH/l.CanvasHeight)
	if floor := availH / (pdfMinRowsPerPage * l.NodeHeight); scale < floor {
		scale = math.Min(widthScale, floor)
	}
	rowsPerPage = max(1, int(math.Floor(availH/(l.NodeHeight*scale)+1e-9)))
	return scale, rowsPerPage
}

func drawLayout(pdf *gofpdf.Fpdf, tr func(string) string, l layout.Layout, hops []models.ItineraryHop) {
	scale, perPage := pdfPlan(l)
	pages := (len(l.Rows) + perPage - 1) / perPage
	for page := 0; page < pages; page++ {
		if page > 0 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetXY(pdfMargin, pdfMargin/2)
			pdf.Cell(0, 6, fmt.Sprintf("continued (%d/%d)", page+1, pages))
		}
		drawPage(pdf, tr, l, hops, scale, page*perPage, min((page+1)*perPage, len(l.Rows)))
	}
}

// drawPage draws rows [first, last). A wrap connector that crosses a page
// break keeps its leaving leg on the first page and its arriving leg on the next.
func drawPage(pdf *gofpdf.Fpdf, tr func(string) string, l layout.Layout, hops []models.ItineraryHop, scale float64, first, last int) {
	ox := pdfMargin
	oy := pdfHeader - float64(first)*l.NodeHeight*scale
	pt := func(p layout.Point) (float64, float64) {
		return ox + p.X*scale, oy + p.Y*scale
	}
	onPage := func(idx int) bool {
		r := l.Nodes[idx].Row
		return r >= first && r < last
	}
	draw := func(seg layout.Segment) {
		x0, y0 := pt(seg.From)
		x1, y1 := pt(seg.To)
		if seg.Kind == layout.SegmentCubic && seg.C1 != nil && seg.C2 != nil {
			cx0, cy0 := pt(*seg.C1)
			cx1, cy1 := pt(*seg.C2)
			pdf.CurveBezierCubic(x0, y0, cx0, cy0, cx1, cy1, x1, y1, "D")
			return
		}
		pdf.Line(x0, y0, x1, y1)
	}

	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.6)
	for _, c := range l.Connectors {
		from, to := onPage(c.From), onPage(c.To)
		switch {
		case from && to:
			for _, seg := range c.Segments {
				draw(seg)
			}
		case from:
			draw(c.Segments[0])
		case to:
			draw(c.Segments[len(c.Segments)-1])
		}
	}

	radius := math.Min(l.NodeWidth, l.NodeHeight) * scale * 0.12
	labelW := l.NodeWidth * scale
	for _, n := range l.Nodes {
		if n.Row < first || n.Row >= last {
			continue
		}
		hop := hops[n.Index]
		cx, cy := pt(n.Center())
		r, g, b := hexRGB(hop.Type.Color())
		pdf.SetFillColor(r, g, b)
		pdf.Circle(cx, cy, radius, "F")

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetXY(cx-labelW/2, cy+radius+1)
		pdf.CellFormat(labelW, 4, tr(hop.Name), "", 2, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		for _, line := range hopDetailLines(hop) {
			pdf.SetX(cx - labelW/2)
			pdf.CellFormat(labelW, 3.5, tr(line), "", 2, "C", false, 0, "")
		}
	}
}

func hopDetailLines(h models.ItineraryHop) []string {
	lines := []string{string(h.Type)}
	when := strings.TrimSpace(h.Date + " " + h.Time)
	if when != "" {
		lines = append(lines, when)
	}
	if h.Location != "" {
		lines = append(lines, h.Location)
	}
	return lines
}

// hexRGB parses #rgb or #rrggbb; anything else is grey.
func hexRGB(s string) (int, int, int) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
