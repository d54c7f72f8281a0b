package domain

import (
	"regexp"

	"go.trai.ch/zerr"
)

// Classification is the outcome of evaluating a changed path against the configured patterns.
type Classification uint8

const (
	// ClassCandidate paths go through ownership mapping.
	ClassCandidate Classification = iota
	// ClassGlobal paths mark every module as affected.
	ClassGlobal
	// ClassIgnored paths contribute to nothing.
	ClassIgnored
)

// String returns the classification name.
func (c Classification) String() string {
	switch c {
	case ClassGlobal:
		return "GLOBAL"
	case ClassIgnored:
		return "IGNORED"
	default:
		return "CANDIDATE"
	}
}

// PatternClassifier evaluates paths against the affects-all and ignored
// regular expression sets. Affects-all is checked first and wins.
type PatternClassifier struct {
	affectsAll []*regexp.Regexp
	ignored    []*regexp.Regexp
}

// NewPatternClassifier compiles both pattern sets.
// An invalid pattern is a configuration error.
func NewPatternClassifier(affectsAll, ignored []string) (*PatternClassifier, error) {
	a, err := compilePatterns("affectsAll", affectsAll)
	if err != nil {
		return nil, err
	}
	i, err := compilePatterns("ignored", ignored)
	if err != nil {
		return nil, err
	}
	return &PatternClassifier{affectsAll: a, ignored: i}, nil
}

func compilePatterns(field string, patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			wrapped := zerr.Wrap(ErrInvalidConfig, "invalid pattern")
			wrapped = zerr.With(wrapped, "field", field)
			wrapped = zerr.With(wrapped, "pattern", p)
			return nil, zerr.With(wrapped, "reason", err.Error())
		}
		res = append(res, re)
	}
	return res, nil
}

// Classify returns the classification of path. Matching is an unanchored search.
func (c *PatternClassifier) Classify(path string) Classification {
	for _, re := range c.affectsAll {
		if re.MatchString(path) {
			return ClassGlobal
		}
	}
	for _, re := range c.ignored {
		if re.MatchString(path) {
			return ClassIgnored
		}
	}
	return ClassCandidate
}
