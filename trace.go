package cliconf

import (
	"encoding/json"
)

// Trace captures every source consulted while resolving a parameter, in
// precedence order, up to and including the winning one.
type Trace struct {
	Parameter string       `json:"parameter"`
	Lookups   []Provenance `json:"lookups"`
}

// Provenance details how a single source contributed to a traced parameter.
type Provenance struct {
	Source Source `json:"source"`
	Value  any    `json:"value,omitempty"`
	Found  bool   `json:"found"`
}

// Winner returns the lookup that supplied the value.
func (t Trace) Winner() (Provenance, bool) {
	for _, lookup := range t.Lookups {
		if lookup.Found {
			return lookup, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
