package layering

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMergeMapsFromFixture(t *testing.T) {
	fx := loadLayeringFixture(t, "layering_merge.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			layers := make([]map[string]any, len(tc.Layers))
			for i := range tc.Layers {
				layers[i] = tc.Layers[i].Values
			}

			got := MergeMaps(layers...)
			if !reflect.DeepEqual(tc.Expect, got) {
				t.Errorf("merged map mismatch:\nwant: %#v\n got: %#v", tc.Expect, got)
			}
		})
	}
}

func TestMergeMapsZeroInput(t *testing.T) {
	got := MergeMaps()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty map, got %#v", got)
	}
}

func TestMergeMapsDoesNotAliasInputs(t *testing.T) {
	strong := map[string]any{"train": map[string]any{"epochs": 5}}
	weak := map[string]any{"train": map[string]any{"device": "cpu"}, "tags": []any{"a"}}

	merged := MergeMaps(strong, weak)
	merged["train"].(map[string]any)["epochs"] = 99
	merged["tags"].([]any)[0] = "changed"

	if strong["train"].(map[string]any)["epochs"] != 5 {
		t.Fatalf("expected strong layer untouched, got %#v", strong)
	}
	if _, ok := strong["train"].(map[string]any)["device"]; ok {
		t.Fatalf("expected strong layer not to receive weak keys, got %#v", strong)
	}
	if weak["tags"].([]any)[0] != "a" {
		t.Fatalf("expected weak slice untouched, got %#v", weak)
	}
}

func TestLookup(t *testing.T) {
	m := map[string]any{"train": map[string]any{"epochs": 5}}
	if value, ok := Lookup(m, "train", "epochs"); !ok || value != 5 {
		t.Fatalf("expected 5, got %v (%v)", value, ok)
	}
	if _, ok := Lookup(m, "train", "epochs", "deeper"); ok {
		t.Fatalf("expected lookup through scalar to fail")
	}
	if _, ok := Lookup(m, "missing"); ok {
		t.Fatalf("expected missing key to fail")
	}
}

type layeringFixture struct {
	Description string                `json:"description"`
	Cases       []layeringFixtureCase `json:"cases"`
}

type layeringFixtureCase struct {
	Name   string                 `json:"name"`
	Layers []layeringFixtureLayer `json:"layers"`
	Expect map[string]any         `json:"expect"`
}

type layeringFixtureLayer struct {
	Source string         `json:"source"`
	Values map[string]any `json:"values"`
}

func loadLayeringFixture(t *testing.T, name string) layeringFixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read layering fixture %q: %v", name, err)
	}
	var fx layeringFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal layering fixture %q: %v", name, err)
	}
	return fx
}
