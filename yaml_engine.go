package cliconf

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	exprTag = "!expr"
	celTag  = "!cel"
)

// YAMLEngineOption configures the declarative engine.
type YAMLEngineOption func(*yamlEngine)

// YAMLWithEvaluator binds tag (for example "!expr") to evaluator.
func YAMLWithEvaluator(tag string, evaluator Evaluator) YAMLEngineOption {
	return func(e *yamlEngine) {
		if evaluator == nil || tag == "" {
			return
		}
		if !strings.HasPrefix(tag, "!") {
			tag = "!" + tag
		}
		e.evaluators[tag] = evaluator
	}
}

type yamlEngine struct {
	evaluators map[string]Evaluator
}

// NewYAMLEngine constructs the declarative engine for .yaml and .yml units.
//
// A unit is a mapping whose keys are assigned to the namespace in document
// order. Values tagged !expr or !cel are expressions evaluated against the
// variables visible at that point, including keys assigned earlier in the
// same unit.
func NewYAMLEngine(opts ...YAMLEngineOption) Engine {
	e := &yamlEngine{evaluators: map[string]Evaluator{}}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *yamlEngine) Name() string { return "yaml" }

func (e *yamlEngine) Extensions() []string { return []string{".yaml", ".yml"} }

func (e *yamlEngine) Exec(ctx context.Context, b *Binding, src []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return fmt.Errorf("cliconf: parse %s: %w", b.Unit.Path, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil
	}
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("cliconf: %s: top level must be a mapping, got %s", b.Unit.Path, kindName(root.Kind))
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := root.Content[i].Value
		value, err := e.decode(b, root.Content[i+1])
		if err != nil {
			return err
		}
		b.Vars.Set(key, value)
	}
	b.Vars.Set(nameKey, b.Unit.Name)
	b.Vars.Set(fileKey, b.Unit.Path)
	return nil
}

func (e *yamlEngine) decode(b *Binding, node *yaml.Node) (any, error) {
	if evaluator, ok := e.evaluators[node.Tag]; ok {
		value, err := evaluator.Evaluate(b.Vars.Mapping(), node.Value)
		if err != nil {
			return nil, wrapEvaluationError(evaluator.Engine(), node.Value, b.Unit.Path, err)
		}
		return value, nil
	}

	switch node.Kind {
	case yaml.AliasNode:
		return e.decode(b, node.Alias)
	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Tag == "!!merge" {
				merged, err := e.decode(b, node.Content[i+1])
				if err != nil {
					return nil, err
				}
				if m, ok := merged.(map[string]any); ok {
					for k, v := range m {
						if _, exists := out[k]; !exists {
							out[k] = v
						}
					}
				}
				continue
			}
			value, err := e.decode(b, node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[node.Content[i].Value] = value
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := e.decode(b, item)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	default:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("cliconf: %s line %d: %w", b.Unit.Path, node.Line, err)
		}
		if n, ok := value.(int); ok {
			return int64(n), nil
		}
		return value, nil
	}
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
