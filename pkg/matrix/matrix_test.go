package matrix

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestComponentMapOrder(t *testing.T) {
	m := NewComponentMap()
	m.Set("Kubernetes", Component{Version: "1.30.3"})
	m.Set("Longhorn", Component{Version: "1.6.2"})
	m.Set("MetalLB", Component{Version: "0.14.9"})

	names := m.Names()
	want := []string{"Kubernetes", "Longhorn", "MetalLB"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestComponentMapOverrideKeepsPosition(t *testing.T) {
	m := NewComponentMap()
	m.Set("Kubernetes", Component{Version: "1.29.0"})
	m.Set("Longhorn", Component{Version: "1.6.2"})
	m.Set("Kubernetes", Component{Version: "1.30.3"})

	if m.Len() != 2 {
		t.Fatalf("expected 2 components after override, got %d", m.Len())
	}
	if m.Names()[0] != "Kubernetes" {
		t.Errorf("override moved Kubernetes, names = %v", m.Names())
	}
	c, ok := m.Get("Kubernetes")
	if !ok || c.Version != "1.30.3" {
		t.Errorf("expected last value to win, got %+v", c)
	}
}

func TestComponentMarshalFieldNames(t *testing.T) {
	c := Component{
		Version:          "1.6.2",
		ChartVersion:     String("104.2.0"),
		ArtifactLocation: String("https://charts.example.com/longhorn"),
	}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(b)

	for _, key := range []string{`"Version"`, `"Helm Chart Version"`, `"Artifact Location (URL/Image)"`} {
		if !strings.Contains(out, key) {
			t.Errorf("expected key %s in output, got %s", key, out)
		}
	}
}

func TestComponentMarshalOmitsAbsentFields(t *testing.T) {
	b, err := json.Marshal(Component{Version: "1.30.3"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(b)
	if strings.Contains(out, "Helm Chart Version") {
		t.Errorf("absent chart version should be omitted, got %s", out)
	}
	if strings.Contains(out, "Artifact Location") {
		t.Errorf("absent artifact location should be omitted, got %s", out)
	}
}

func TestComponentMapMarshalPreservesOrder(t *testing.T) {
	m := NewComponentMap()
	m.Set("ZFS", Component{Version: "2.2"})
	m.Set("Akri", Component{Version: "0.12"})

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(b)
	if strings.Index(out, "ZFS") > strings.Index(out, "Akri") {
		t.Errorf("expected insertion order in JSON, got %s", out)
	}
}

func TestReleaseMarshalEmptyData(t *testing.T) {
	rel := NewRelease("3.1.2", "2024-10-15", "https://example.com/notes#3-1-2")
	b, err := json.Marshal(rel)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"Data":{}`) {
		t.Errorf("expected empty Data object, got %s", out)
	}
	if !strings.Contains(out, `"AvailabilityDate":"2024-10-15"`) {
		t.Errorf("expected availability date field, got %s", out)
	}
}

func TestComponentMapMerge(t *testing.T) {
	dst := NewComponentMap()
	dst.Set("Kubernetes", Component{Version: "1.29.0"})

	src := NewComponentMap()
	src.Set("Kubernetes", Component{Version: "1.30.3"})
	src.Set("Longhorn", Component{Version: "1.6.2"})

	dst.Merge(src)

	if dst.Len() != 2 {
		t.Fatalf("expected 2 components after merge, got %d", dst.Len())
	}
	c, _ := dst.Get("Kubernetes")
	if c.Version != "1.30.3" {
		t.Errorf("merge should override, got %q", c.Version)
	}
}
