// Package scenario loads business scenarios from HCL and evaluates their
// feature adjustments against a resort's current facilities.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

//go:embed default_scenarios.hcl
var defaultScenarios []byte

// DefaultSource names the embedded scenario set in errors and logs.
const DefaultSource = "default_scenarios.hcl"

// ErrInvalid reports a scenario file that parses but cannot be used.
var ErrInvalid = errors.New("invalid scenario")

// baseVar is the variable scenarios read current feature values from.
const baseVar = "base"

// Set is a parsed scenario file.
type Set struct {
	// Source is the file the set was read from, or DefaultSource.
	Source string
	// Resort overrides the configured resort when non-empty.
	Resort    string
	Scenarios []Scenario
}

// Scenario is one named what-if change to a resort's features.
type Scenario struct {
	Name        string
	Description string
	adjust      hcl.Expression
}

type fileSchema struct {
	Resort    string          `hcl:"resort,optional"`
	Scenarios []scenarioBlock `hcl:"scenario,block"`
}

type scenarioBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Adjust      hcl.Expression `hcl:"adjust"`
}

// Load reads scenarios from path. When no file exists there, the embedded
// default set is returned.
func Load(path string) (*Set, error) {
	if strings.TrimSpace(path) != "" {
		src, err := os.ReadFile(path)
		switch {
		case err == nil:
			return Parse(src, path)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read scenarios %s: %w", path, err)
		}
	}
	return Default()
}

// Default returns the embedded scenario set.
func Default() (*Set, error) {
	return Parse(defaultScenarios, DefaultSource)
}

// Parse decodes HCL scenario definitions. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Set, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}
	var decoded fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &decoded); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", filename, diags)
	}

	set := &Set{
		Source:    filename,
		Resort:    strings.TrimSpace(decoded.Resort),
		Scenarios: make([]Scenario, 0, len(decoded.Scenarios)),
	}
	seen := make(map[string]bool, len(decoded.Scenarios))
	for _, block := range decoded.Scenarios {
		name := strings.TrimSpace(block.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: %s: scenario name must not be empty", ErrInvalid, filename)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s: duplicate scenario %q", ErrInvalid, filename, name)
		}
		seen[name] = true
		for _, traversal := range block.Adjust.Variables() {
			if root := traversal.RootName(); root != baseVar {
				return nil, fmt.Errorf("%w: %s: scenario %q references unknown variable %q (only %q is available)",
					ErrInvalid, filename, name, root, baseVar)
			}
		}
		set.Scenarios = append(set.Scenarios, Scenario{
			Name:        name,
			Description: strings.TrimSpace(block.Description),
			adjust:      block.Adjust,
		})
	}
	if len(set.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: %s defines no scenarios", ErrInvalid, filename)
	}
	return set, nil
}

// Names returns the scenario names in file order.
func (s *Set) Names() []string {
	out := make([]string, len(s.Scenarios))
	for i, sc := range s.Scenarios {
		out[i] = sc.Name
	}
	return out
}

// Apply evaluates the scenario's adjustments against base and returns a copy
// of base with the adjusted features replaced. Every adjusted feature must
// already exist in base and evaluate to a known number.
func (s Scenario) Apply(base map[string]float64) (map[string]float64, error) {
	changes, err := s.Changes(base)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range changes {
		out[k] = v
	}
	return out, nil
}

// Changes evaluates only the adjusted features.
func (s Scenario) Changes(base map[string]float64) (map[string]float64, error) {
	if s.adjust == nil {
		return nil, fmt.Errorf("%w: scenario %q has no adjustments", ErrInvalid, s.Name)
	}
	val, diags := s.adjust.Value(evalContext(base))
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: scenario %q: %w", ErrInvalid, s.Name, diags)
	}
	if val.IsNull() || !val.IsKnown() || !(val.Type().IsObjectType() || val.Type().IsMapType()) {
		return nil, fmt.Errorf("%w: scenario %q: adjust must be an object of feature values", ErrInvalid, s.Name)
	}

	raw := val.AsValueMap()
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]float64, len(raw))
	for _, name := range names {
		if _, ok := base[name]; !ok {
			return nil, fmt.Errorf("%w: scenario %q adjusts unknown feature %q", ErrInvalid, s.Name, name)
		}
		v := raw[name]
		if v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
			return nil, fmt.Errorf("%w: scenario %q: %s must be a number", ErrInvalid, s.Name, name)
		}
		f, _ := v.AsBigFloat().Float64()
		out[name] = f
	}
	return out, nil
}

func evalContext(base map[string]float64) *hcl.EvalContext {
	features := make(map[string]cty.Value, len(base))
	for name, v := range base {
		features[name] = cty.NumberFloatVal(v)
	}
	baseVal := cty.EmptyObjectVal
	if len(features) > 0 {
		baseVal = cty.ObjectVal(features)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{baseVar: baseVal},
		Functions: map[string]function.Function{
			"min":   stdlib.MinFunc,
			"max":   stdlib.MaxFunc,
			"abs":   stdlib.AbsoluteFunc,
			"floor": stdlib.FloorFunc,
			"ceil":  stdlib.CeilFunc,
		},
	}
}
