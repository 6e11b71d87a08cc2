package hydrate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_params.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[appParams](buildOptions(tc)...)

			result, err := decoder.Decode(Context{Command: tc.Command}, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}

			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded params mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecoderRejectsNilValues(t *testing.T) {
	_, err := NewDecoder[appParams]().Decode(Context{Command: "app"}, nil)
	if err == nil || !strings.Contains(err.Error(), "values are nil") {
		t.Fatalf("expected nil values error, got %v", err)
	}
}

func TestDecoderDoesNotMutateInput(t *testing.T) {
	input := map[string]any{"verbose": 7}
	_, err := NewDecoder[appParams](WithPreHook[appParams](clampVerbosePreHook)).Decode(Context{}, input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if input["verbose"] != 7 {
		t.Fatalf("expected input untouched, got %v", input["verbose"])
	}
}

func TestDecoderHookErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewDecoder[appParams](
		WithPostHook[appParams](func(Context, *appParams) error { return boom }),
	).Decode(Context{Command: "app"}, map[string]any{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped post-hook error, got %v", err)
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[appParams] {
	options := []DecoderOption[appParams]{}

	for _, optName := range tc.Options {
		switch optName {
		case "error_unused":
			options = append(options, WithErrorUnused[appParams]())
		case "strict":
			options = append(options, WithStrictTypes[appParams]())
		}
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "clamp_verbose":
			options = append(options, WithPreHook[appParams](clampVerbosePreHook))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "default_tag":
			options = append(options, WithPostHook[appParams](defaultTagPostHook))
		}
	}

	return options
}

func clampVerbosePreHook(_ Context, values map[string]any) (map[string]any, error) {
	switch v := values["verbose"].(type) {
	case int:
		if v > 3 {
			values["verbose"] = 3
		}
	case float64:
		if v > 3 {
			values["verbose"] = 3
		}
	}
	return values, nil
}

func defaultTagPostHook(ctx Context, params *appParams) error {
	if len(params.Tags) == 0 {
		params.Tags = []string{ctx.Command}
	}
	return nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name      string         `json:"name"`
	Command   string         `json:"command"`
	Input     map[string]any `json:"input"`
	Expect    appParams      `json:"expect"`
	ExpectErr string         `json:"expectErr"`
	PreHooks  []string       `json:"preHooks"`
	PostHooks []string       `json:"postHooks"`
	Options   []string       `json:"options"`
}

type appParams struct {
	Integer int           `config:"integer"`
	Flag    bool          `config:"flag"`
	Str     string        `config:"str"`
	Timeout time.Duration `config:"timeout"`
	Tags    []string      `config:"tags"`
	Verbose int           `config:"verbose"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
