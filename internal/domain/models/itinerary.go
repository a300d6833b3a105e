package models

import "strings"

// HopType classifies one itinerary segment.
type HopType string

const (
	HopFlight    HopType = "flight"
	HopTrain     HopType = "train"
	HopHotel     HopType = "hotel"
	HopCarRental HopType = "carRental"
	HopActivity  HopType = "activity"
	HopOther     HopType = "other"
)

var hopTypes = map[HopType]struct {
	icon  string
	color string
}{
	HopFlight:    {"✈️", "#4C8BF5"},
	HopTrain:     {"🚆", "#FF7D35"},
	HopHotel:     {"🏨", "#2ECC71"},
	HopCarRental: {"🚗", "#F39C12"},
	HopActivity:  {"🎟️", "#9B59B6"},
	HopOther:     {"❓", "#95A5A6"},
}

// ParseHopType accepts the wire value case-insensitively; anything unknown is "other".
func ParseHopType(s string) HopType {
	s = strings.TrimSpace(s)
	for t := range hopTypes {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	if strings.EqualFold(s, "car_rental") || strings.EqualFold(s, "car") {
		return HopCarRental
	}
	return HopOther
}

func (t HopType) Icon() string {
	if v, ok := hopTypes[t]; ok {
		return v.icon
	}
	return hopTypes[HopOther].icon
}

func (t HopType) Color() string {
	if v, ok := hopTypes[t]; ok {
		return v.color
	}
	return hopTypes[HopOther].color
}

// ItineraryHop is one travel segment. Date and Time are display strings,
// Date may be a single day or a textual range ("Nov 10-13").
type ItineraryHop struct {
	Type     HopType `json:"type" yaml:"type" bson:"type"`
	Name     string  `json:"name" yaml:"name" bson:"name"`
	Details  string  `json:"details,omitempty" yaml:"details,omitempty" bson:"details,omitempty"`
	Date     string  `json:"date" yaml:"date" bson:"date"`
	Time     string  `json:"time,omitempty" yaml:"time,omitempty" bson:"time,omitempty"`
	Location string  `json:"location,omitempty" yaml:"location,omitempty" bson:"location,omitempty"`
}

// Itinerary keeps hops in travel order. The order is meaningful and is never sorted.
type Itinerary struct {
	Hops []ItineraryHop `json:"hops" yaml:"hops" bson:"hops"`
}

// AgentState is the shared state object synchronized with the agent backend.
type AgentState struct {
	Itinerary Itinerary `json:"itinerary" yaml:"itinerary"`
}

// Clone returns a deep copy so callers can hand the hops to readers safely.
func (it Itinerary) Clone() Itinerary {
	if it.Hops == nil {
		return Itinerary{Hops: []ItineraryHop{}}
	}
	hops := make([]ItineraryHop, len(it.Hops))
	copy(hops, it.Hops)
	return Itinerary{Hops: hops}
}
