// Package matrix defines the support matrix data model: releases and the
// components they ship, keyed by component name in document order.
package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Component describes one supported component of a release. ChartVersion and
// ArtifactLocation are optional; nil means the documentation carries no value
// for that column, which is distinct from an empty string.
type Component struct {
	Version          string
	ChartVersion     *string
	ArtifactLocation *string
}

// Contract field names for the marshalled form. Downstream consumers key on
// these exact strings, so they are defined once here.
const (
	FieldVersion  = "Version"
	FieldChart    = "Helm Chart Version"
	FieldArtifact = "Artifact Location (URL/Image)"
)

// MarshalJSON emits the component with the contract field names. Optional
// fields are omitted entirely when absent. Hand-rolled because the chart and
// artifact keys contain characters a struct tag cannot carry.
func (c Component) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeField(&buf, FieldVersion, c.Version); err != nil {
		return nil, err
	}
	if c.ChartVersion != nil {
		buf.WriteByte(',')
		if err := writeField(&buf, FieldChart, *c.ChartVersion); err != nil {
			return nil, err
		}
	}
	if c.ArtifactLocation != nil {
		buf.WriteByte(',')
		if err := writeField(&buf, FieldArtifact, *c.ArtifactLocation); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, name, value string) error {
	for i, s := range []string{name, value} {
		b, err := json.Marshal(s)
		if err != nil {
			return err
		}
		if i == 1 {
			buf.WriteByte(':')
		}
		buf.Write(b)
	}
	return nil
}

// ComponentMap is a component mapping that preserves the order rows appeared
// in the source table. Overwriting an existing name keeps its original
// position, matching "later rows override earlier ones" without reshuffling
// the rendered table.
type ComponentMap struct {
	names []string
	items map[string]Component
}

// NewComponentMap returns an empty, ready-to-use map.
func NewComponentMap() *ComponentMap {
	return &ComponentMap{items: make(map[string]Component)}
}

// Set stores a component under name, overriding any previous entry.
func (m *ComponentMap) Set(name string, c Component) {
	if _, ok := m.items[name]; !ok {
		m.names = append(m.names, name)
	}
	m.items[name] = c
}

// Get returns the component stored under name.
func (m *ComponentMap) Get(name string) (Component, bool) {
	if m == nil {
		return Component{}, false
	}
	c, ok := m.items[name]
	return c, ok
}

// Names returns the component names in insertion order.
func (m *ComponentMap) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Len reports the number of components.
func (m *ComponentMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Merge copies every entry of other into m, in other's order. Entries that
// collide with existing names override them.
func (m *ComponentMap) Merge(other *ComponentMap) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		m.Set(name, other.items[name])
	}
}

// MarshalJSON renders the mapping as a JSON object in insertion order.
// A nil or empty map marshals as {} so exporters always see a Data object.
func (m *ComponentMap) MarshalJSON() ([]byte, error) {
	if m == nil || len(m.names) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.items[name])
		if err != nil {
			return nil, fmt.Errorf("marshal component %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Release is one tracked product release together with its component mapping.
// Releases are assembled once per run and never mutated afterwards.
type Release struct {
	Version          string        `json:"Version"`
	AvailabilityDate string        `json:"AvailabilityDate"`
	URL              string        `json:"URL"`
	Data             *ComponentMap `json:"Data"`
}

// NewRelease returns a release with an initialized, empty component mapping.
func NewRelease(version, availabilityDate, url string) Release {
	return Release{
		Version:          version,
		AvailabilityDate: availabilityDate,
		URL:              url,
		Data:             NewComponentMap(),
	}
}

// String returns a pointer to s, for filling the optional component fields.
func String(s string) *string {
	return &s
}
