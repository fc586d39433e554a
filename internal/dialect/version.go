package dialect

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/you-not-fish/starling/internal/syntax"
)

// LatestVersion is the newest language version. Every feature is
// available at it.
const LatestVersion = "2.0.0"

// introduced holds, per feature, the language versions that have it.
// Features without an entry exist in every version.
var introduced = map[syntax.Feature]*semver.Constraints{
	syntax.FeatureLambda:      mustConstraint(">= 1.1.0"),
	syntax.FeatureKeywordOnly: mustConstraint(">= 1.2.0"),
	syntax.FeatureTypes:       mustConstraint(">= 2.0.0"),
}

func mustConstraint(expr string) *semver.Constraints {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		panic(err)
	}
	return c
}

// Available reports whether language version v has feature f.
func Available(f syntax.Feature, v *semver.Version) bool {
	c, ok := introduced[f]
	return !ok || c.Check(v)
}

// ForVersion pins p to a language version: features the version does
// not have are switched off. Features p already disables stay off.
func (p *Policy) ForVersion(version string) (*Policy, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid language version %q: %w", version, err)
	}
	latest := semver.MustParse(LatestVersion)
	if v.GreaterThan(latest) {
		return nil, fmt.Errorf("language version %s is newer than %s", v, latest)
	}

	q := *p
	q.version = v
	for _, f := range syntax.Features() {
		if !Available(f, v) {
			q.features &^= 1 << f
		}
	}
	return &q, nil
}
