// Package layout arranges an ordered itinerary into rows of fixed-size nodes
// and computes the connector path that joins consecutive hops.
//
// Rows are filled in storage order. Under the serpentine policy odd rows are
// displayed right-to-left so the path reads as a continuous zigzag. The
// engine is a pure function of (hops, container width): every change is a
// full recompute.
package layout

import (
	"math"
	"strings"

	"vacai/internal/domain/models"
)

type Direction int

const (
	// DirectionSerpentine reverses every odd row on screen.
	DirectionSerpentine Direction = iota
	// DirectionLeftToRight lays every row in storage order.
	DirectionLeftToRight
)

func (d Direction) String() string {
	if d == DirectionLeftToRight {
		return "ltr"
	}
	return "serpentine"
}

// ParseDirection returns DirectionSerpentine for anything it does not recognize.
func ParseDirection(s string) Direction {
	switch s {
	case "ltr", "left-to-right", "left_to_right":
		return DirectionLeftToRight
	default:
		return DirectionSerpentine
	}
}

type ConnectorStyle string

const (
	ConnectorCurved   ConnectorStyle = "curved"
	ConnectorStraight ConnectorStyle = "straight"
)

// ParseConnectorStyle returns ConnectorCurved for anything but "straight".
func ParseConnectorStyle(s string) ConnectorStyle {
	if strings.EqualFold(strings.TrimSpace(s), string(ConnectorStraight)) {
		return ConnectorStraight
	}
	return ConnectorCurved
}

const (
	DefaultNodeWidth  = 170.0
	DefaultNodeHeight = 160.0
	defaultCurveBend  = 40.0
	defaultCurveLift  = 30.0
	defaultWrapDrop   = 20.0
)

// Config is fixed per view.
type Config struct {
	NodeWidth  float64
	NodeHeight float64
	Direction  Direction
	Connector  ConnectorStyle
	// CurveBend is the horizontal reach of a row connector's control points.
	CurveBend float64
	// CurveLift raises a row connector's control points above the node centers.
	CurveLift float64
	// WrapDrop is the length of the vertical legs of a wrap connector.
	WrapDrop float64
}

func DefaultConfig() Config {
	return Config{
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		Direction:  DirectionSerpentine,
		Connector:  ConnectorCurved,
		CurveBend:  defaultCurveBend,
		CurveLift:  defaultCurveLift,
		WrapDrop:   defaultWrapDrop,
	}
}

func (c Config) normalized() Config {
	if !(c.NodeWidth > 0) || math.IsInf(c.NodeWidth, 0) {
		c.NodeWidth = DefaultNodeWidth
	}
	if !(c.NodeHeight > 0) || math.IsInf(c.NodeHeight, 0) {
		c.NodeHeight = DefaultNodeHeight
	}
	if c.Connector != ConnectorStraight {
		c.Connector = ConnectorCurved
	}
	if c.CurveBend < 0 {
		c.CurveBend = 0
	}
	if c.CurveLift < 0 {
		c.CurveLift = 0
	}
	if c.WrapDrop < 0 {
		c.WrapDrop = 0
	}
	// The two vertical legs must fit between two row centers.
	if c.WrapDrop*2 > c.NodeHeight {
		c.WrapDrop = c.NodeHeight / 2
	}
	return c
}

// RowCapacity is max(1, floor(containerWidth/nodeWidth)). Negative, NaN and
// zero widths yield one column so an unmeasured container still lays out.
func RowCapacity(containerWidth, nodeWidth float64) int {
	if !(nodeWidth > 0) {
		nodeWidth = DefaultNodeWidth
	}
	if !(containerWidth > 0) || math.IsInf(nodeWidth, 0) {
		return 1
	}
	if math.IsInf(containerWidth, 1) {
		return math.MaxInt32
	}
	n := math.Floor(containerWidth / nodeWidth)
	if n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Row is a contiguous storage slice [Start, End) of the itinerary.
type Row struct {
	Index    int  `json:"index"`
	Start    int  `json:"start"`
	End      int  `json:"end"`
	Reversed bool `json:"reversed"`
	// Display lists storage indices in on-screen left-to-right order.
	Display []int `json:"display"`
}

func (r Row) Len() int { return r.End - r.Start }

// Node places one hop. Index is the flattened storage index and is the stable
// key for interaction state; Slot is the on-screen column.
type Node struct {
	Index   int     `json:"index"`
	Row     int     `json:"row"`
	Column  int     `json:"column"`
	Slot    int     `json:"slot"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
}

func (n Node) Center() Point { return Point{X: n.CenterX, Y: n.CenterY} }

type SegmentKind string

const (
	SegmentLine  SegmentKind = "line"
	SegmentCubic SegmentKind = "cubic"
)

// Segment is a straight line or a cubic bezier; C1/C2 are set for cubics only.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	From Point       `json:"from"`
	C1   *Point      `json:"c1,omitempty"`
	C2   *Point      `json:"c2,omitempty"`
	To   Point       `json:"to"`
}

type ConnectorKind string

const (
	// ConnectorRow joins two neighbours inside a row.
	ConnectorRow ConnectorKind = "row"
	// ConnectorWrap joins the last node of a row to the entry node of the next.
	ConnectorWrap ConnectorKind = "wrap"
)

// Connector joins storage index From to From+1.
type Connector struct {
	From     int           `json:"from"`
	To       int           `json:"to"`
	Kind     ConnectorKind `json:"kind"`
	Segments []Segment     `json:"segments"`
}

type Layout struct {
	RowCapacity  int         `json:"rowCapacity"`
	NodeWidth    float64     `json:"nodeWidth"`
	NodeHeight   float64     `json:"nodeHeight"`
	Direction    string      `json:"direction"`
	CanvasWidth  float64     `json:"canvasWidth"`
	CanvasHeight float64     `json:"canvasHeight"`
	Rows         []Row       `json:"rows"`
	Nodes        []Node      `json:"nodes"`
	Connectors   []Connector `json:"connectors"`
}

// Compute lays out hops for the given container width. It never fails and
// never modifies hops.
func (c Config) Compute(hops []models.ItineraryHop, containerWidth float64) Layout {
	c = c.normalized()
	n := len(hops)
	capacity := RowCapacity(containerWidth, c.NodeWidth)

	rowCount := 0
	if n > 0 {
		rowCount = (n + capacity - 1) / capacity
	}

	out := Layout{
		RowCapacity: capacity,
		NodeWidth:   c.NodeWidth,
		NodeHeight:  c.NodeHeight,
		Direction:   c.Direction.String(),
		Rows:        make([]Row, 0, rowCount),
		Nodes:       make([]Node, 0, n),
		Connectors:  make([]Connector, 0, max(n-1, 0)),
	}

	widest := 0
	for r := 0; r < rowCount; r++ {
		start := r * capacity
		end := min(start+capacity, n)
		length := end - start
		widest = max(widest, length)

		row := Row{
			Index:    r,
			Start:    start,
			End:      end,
			Reversed: c.reversed(r),
			Display:  make([]int, length),
		}
		for i := 0; i < length; i++ {
			slot := c.slot(r, i, length)
			row.Display[slot] = start + i
			out.Nodes = append(out.Nodes, Node{
				Index:   start + i,
				Row:     r,
				Column:  i,
				Slot:    slot,
				CenterX: float64(slot)*c.NodeWidth + c.NodeWidth/2,
				CenterY: float64(r)*c.NodeHeight + c.NodeHeight/2,
			})
		}
		out.Rows = append(out.Rows, row)
	}

	for i := 0; i+1 < n; i++ {
		from, to := out.Nodes[i], out.Nodes[i+1]
		if from.Row == to.Row {
			out.Connectors = append(out.Connectors, c.rowConnector(from, to))
		} else {
			out.Connectors = append(out.Connectors, c.wrapConnector(from, to))
		}
	}

	out.CanvasWidth = math.Max(sanitizeWidth(containerWidth), float64(widest)*c.NodeWidth)
	out.CanvasHeight = float64(rowCount) * c.NodeHeight
	return out
}

func (c Config) reversed(row int) bool {
	return c.Direction == DirectionSerpentine && row%2 == 1
}

// slot maps intra-row storage index i to its on-screen column.
func (c Config) slot(row, i, length int) int {
	if c.reversed(row) {
		return length - 1 - i
	}
	return i
}

func (c Config) rowConnector(from, to Node) Connector {
	start, end := from.Center(), to.Center()
	seg := Segment{Kind: SegmentLine, From: start, To: end}
	if c.Connector == ConnectorCurved {
		dir := 1.0
		if end.X < start.X {
			dir = -1
		}
		bend := math.Min(c.CurveBend, math.Abs(end.X-start.X)/2)
		seg.Kind = SegmentCubic
		seg.C1 = &Point{X: start.X + dir*bend, Y: start.Y - c.CurveLift}
		seg.C2 = &Point{X: end.X - dir*bend, Y: end.Y - c.CurveLift}
	}
	return Connector{From: from.Index, To: to.Index, Kind: ConnectorRow, Segments: []Segment{seg}}
}

// wrapConnector drops from the end of one row, bends across to the entry
// node of the next row and drops into it.
func (c Config) wrapConnector(from, to Node) Connector {
	start, end := from.Center(), to.Center()
	upper := Point{X: start.X, Y: start.Y + c.WrapDrop}
	lower := Point{X: end.X, Y: end.Y - c.WrapDrop}

	bridge := Segment{Kind: SegmentLine, From: upper, To: lower}
	if c.Connector == ConnectorCurved {
		dir := 1.0
		if lower.X < upper.X {
			dir = -1
		}
		bend := math.Min(c.WrapDrop, math.Abs(lower.X-upper.X)/2)
		bridge.Kind = SegmentCubic
		bridge.C1 = &Point{X: upper.X + dir*bend, Y: upper.Y}
		bridge.C2 = &Point{X: lower.X - dir*bend, Y: lower.Y}
	}

	return Connector{
		From: from.Index,
		To:   to.Index,
		Kind: ConnectorWrap,
		Segments: []Segment{
			{Kind: SegmentLine, From: start, To: upper},
			bridge,
			{Kind: SegmentLine, From: lower, To: end},
		},
	}
}

func sanitizeWidth(w float64) float64 {
	if !(w > 0) || math.IsInf(w, 0) {
		return 0
	}
	return w
}

// StorageOrder concatenates rows back into storage order, undoing the
// on-screen reversal.
func (l Layout) StorageOrder() []int {
	out := make([]int, 0, len(l.Nodes))
	for _, row := range l.Rows {
		display := row.Display
		if row.Reversed {
			for i := len(display) - 1; i >= 0; i-- {
				out = append(out, display[i])
			}
			continue
		}
		out = append(out, display...)
	}
	return out
}

// RowLengths is mostly useful in tests and logs.
func (l Layout) RowLengths() []int {
	out := make([]int, len(l.Rows))
	for i, r := range l.Rows {
		out[i] = r.Len()
	}
	return out
}
