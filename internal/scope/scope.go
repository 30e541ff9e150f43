package scope

import (
	"errors"
	"fmt"
	"strings"
)

// Scope partitions every taxonomy node, case and pending item.
type Scope string

const (
	Water Scope = "water"
	Bus   Scope = "bus"
	Bike  Scope = "bike"
)

// TransitScenarioID is the scenario whose operators manage bus and bike.
const TransitScenarioID = 2

var (
	// ErrUnknown is returned for a code outside water/bus/bike.
	ErrUnknown = errors.New("unknown scope")
	// ErrNotPermitted is returned when the user's scenario excludes a scope.
	ErrNotPermitted = errors.New("scope not permitted")
)

var all = []Scope{Water, Bus, Bike}

var labels = map[Scope]string{
	Water: "Water",
	Bus:   "Bus",
	Bike:  "Bike",
}

// domains are the business-domain names written in import files.
var domains = map[Scope]string{
	Water: "水务",
	Bus:   "公交",
	Bike:  "自行车",
}

// All lists every scope in display order.
func All() []Scope {
	out := make([]Scope, len(all))
	copy(out, all)
	return out
}

// Parse converts a user-supplied code into a Scope.
func Parse(raw string) (Scope, error) {
	s := Scope(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := labels[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, raw)
	}
	return s, nil
}

func (s Scope) String() string { return string(s) }

// Label is the short display name.
func (s Scope) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// Domain is the business-domain column value expected in import files.
func (s Scope) Domain() string {
	return domains[s]
}

// Allowed returns the scopes a user of the given scenario may act on.
func Allowed(scenarioID int) []Scope {
	if scenarioID == TransitScenarioID {
		return []Scope{Bus, Bike}
	}
	return []Scope{Water}
}

// Default is the first allowed scope for a scenario.
func Default(scenarioID int) Scope {
	return Allowed(scenarioID)[0]
}

// Check fails unless s is one of the scenario's allowed scopes.
func Check(s Scope, scenarioID int) error {
	for _, a := range Allowed(scenarioID) {
		if a == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s for scenario %d", ErrNotPermitted, s, scenarioID)
}
