package syntax

import "fmt"

// Feature is an optional language construct a Dialect may permit.
type Feature uint8

const (
	FeatureDef         Feature = iota // def statements
	FeatureLambda                     // lambda expressions
	FeatureLoad                       // load statements
	FeatureKeywordOnly                // bare * in parameter lists
	FeatureTypes                      // : T and -> T annotations

	featureCount
)

var featureNames = [...]string{
	FeatureDef:         "def",
	FeatureLambda:      "lambda",
	FeatureLoad:        "load",
	FeatureKeywordOnly: "keyword-only",
	FeatureTypes:       "types",
}

var featureDescriptions = [...]string{
	FeatureDef:         "function definitions",
	FeatureLambda:      "lambda expressions",
	FeatureLoad:        "load statements",
	FeatureKeywordOnly: "keyword-only parameter markers",
	FeatureTypes:       "type annotations",
}

// String returns the short name of the feature.
func (f Feature) String() string {
	if f < featureCount {
		return featureNames[f]
	}
	return fmt.Sprintf("feature(%d)", f)
}

// Description returns a phrase naming the feature in error messages.
func (f Feature) Description() string {
	if f < featureCount {
		return featureDescriptions[f]
	}
	return f.String()
}

// Features returns every known feature in declaration order.
func Features() []Feature {
	fs := make([]Feature, featureCount)
	for i := range fs {
		fs[i] = Feature(i)
	}
	return fs
}

// LookupFeature returns the feature with the given short name.
func LookupFeature(name string) (Feature, bool) {
	for i, n := range featureNames {
		if n == name {
			return Feature(i), true
		}
	}
	return 0, false
}

// A Dialect decides which optional constructs the parser accepts.
// The parser consults it once per recognized construct and never
// caches the answer. Implementations must be safe for concurrent use.
type Dialect interface {
	// Permits reports whether f is enabled.
	Permits(f Feature) bool
	// LoadVisibility is the visibility assigned to names bound by load.
	LoadVisibility() Visibility
}
