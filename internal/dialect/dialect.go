// Package dialect provides the stock dialects of starling: named
// feature sets the parser consults to accept or reject optional
// constructs, optionally pinned to a language version.
package dialect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/you-not-fish/starling/internal/syntax"
)

// Policy is an immutable syntax.Dialect. The zero value permits nothing
// and loads privately.
type Policy struct {
	name     string
	version  *semver.Version // nil if not pinned
	features uint32          // bit set indexed by syntax.Feature
	loads    syntax.Visibility
}

func bits(fs ...syntax.Feature) uint32 {
	var b uint32
	for _, f := range fs {
		b |= 1 << f
	}
	return b
}

// Preset dialects.
var (
	// Standard is the everyday configuration language: functions,
	// lambdas, loads and keyword-only parameters, without annotations.
	// Loaded names stay private to the loading module.
	Standard = &Policy{
		name:     "standard",
		features: bits(syntax.FeatureDef, syntax.FeatureLambda, syntax.FeatureLoad, syntax.FeatureKeywordOnly),
		loads:    syntax.Private,
	}

	// Extended enables every feature and re-exports loaded names.
	Extended = &Policy{
		name:     "extended",
		features: bits(syntax.Features()...),
		loads:    syntax.Public,
	}

	// Build is for declarative build files: load is the only optional
	// construct.
	Build = &Policy{
		name:     "build",
		features: bits(syntax.FeatureLoad),
		loads:    syntax.Private,
	}
)

var presets = []*Policy{Standard, Extended, Build}

// Names returns the names of the preset dialects.
func Names() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.name
	}
	return names
}

// ByName returns the preset with the given name.
func ByName(name string) (*Policy, bool) {
	for _, p := range presets {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// Parse resolves a dialect specification of the form "name" or
// "name@version". An empty specification selects Standard.
func Parse(spec string) (*Policy, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Standard, nil
	}
	name, version, pinned := strings.Cut(spec, "@")
	p, ok := ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	if !pinned {
		return p, nil
	}
	return p.ForVersion(version)
}

// Permits reports whether f is enabled.
func (p *Policy) Permits(f syntax.Feature) bool {
	return p.features&(1<<f) != 0
}

// LoadVisibility is the visibility given to names bound by load.
func (p *Policy) LoadVisibility() syntax.Visibility {
	return p.loads
}

// Name returns the preset name the policy was derived from.
func (p *Policy) Name() string {
	return p.name
}

// Version returns the pinned language version, or nil.
func (p *Policy) Version() *semver.Version {
	return p.version
}

// Features returns the enabled features in declaration order.
func (p *Policy) Features() []syntax.Feature {
	var fs []syntax.Feature
	for _, f := range syntax.Features() {
		if p.Permits(f) {
			fs = append(fs, f)
		}
	}
	return fs
}

// String returns "name" or "name@version".
func (p *Policy) String() string {
	if p.version == nil {
		return p.name
	}
	return p.name + "@" + p.version.String()
}

// With returns a copy of p with f switched on or off.
func (p *Policy) With(f syntax.Feature, on bool) *Policy {
	q := *p
	if on {
		q.features |= 1 << f
	} else {
		q.features &^= 1 << f
	}
	return &q
}

// WithLoadVisibility returns a copy of p that loads with visibility v.
func (p *Policy) WithLoadVisibility(v syntax.Visibility) *Policy {
	q := *p
	q.loads = v
	return &q
}

// Toggle applies a comma-separated list of feature names, such as
// "lambda,types", switching each on or off.
func (p *Policy) Toggle(list string, on bool) (*Policy, error) {
	q := p
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, ok := syntax.LookupFeature(name)
		if !ok {
			return nil, fmt.Errorf("unknown feature %q (known: %s)", name, strings.Join(featureNames(), ", "))
		}
		q = q.With(f, on)
	}
	return q, nil
}

func featureNames() []string {
	var names []string
	for _, f := range syntax.Features() {
		names = append(names, f.String())
	}
	slices.Sort(names)
	return names
}
