package filtering

import (
	"fmt"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// GlobSearch reports whether input matches the glob pattern as a whole.
// '?' matches exactly one character and '*' matches any run, including an
// empty one. An empty pattern never matches.
func GlobSearch(pattern, input string, caseSensitive bool) bool {
	if pattern == "" {
		return false
	}
	if !caseSensitive {
		pattern = strings.ToLower(pattern)
		input = strings.ToLower(input)
	}
	return globMatch([]rune(pattern), []rune(input))
}

// globMatch backtracks over the pattern: '*' first tries to match nothing,
// then consumes one input character and retries
func globMatch(pattern, input []rune) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '?':
			if len(input) == 0 {
				return false
			}
			pattern, input = pattern[1:], input[1:]
		case '*':
			if globMatch(pattern[1:], input) {
				return true
			}
			return len(input) > 0 && globMatch(pattern, input[1:])
		default:
			if len(input) == 0 || pattern[0] != input[0] {
				return false
			}
			pattern, input = pattern[1:], input[1:]
		}
	}
	return len(input) == 0
}

// RegexSearch reports whether re matches anywhere in input. A nil expression
// never matches.
func RegexSearch(re *regexp.Regexp, input string) bool {
	if re == nil {
		return false
	}
	return re.MatchString(input)
}

// Pattern is a compiled filter pattern
type Pattern struct {
	globs         mapset.Set[string]
	re            *regexp.Regexp
	caseSensitive bool
}

// CompilePattern compiles a filter pattern. In glob mode the expression is
// split on whitespace and duplicate terms are dropped. In regex mode an empty
// expression compiles to a pattern that never matches.
func CompilePattern(expr string, useRegex, caseSensitive bool) (*Pattern, error) {
	p := &Pattern{caseSensitive: caseSensitive}

	if !useRegex {
		p.globs = mapset.NewThreadUnsafeSet(strings.Fields(expr)...)
		return p, nil
	}

	if expr == "" {
		return p, nil
	}

	src := expr
	if !caseSensitive {
		src = "(?i)" + expr
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", expr, err)
	}
	p.re = re
	return p, nil
}

// Match reports whether the input matches any glob term or the regular expression
func (p *Pattern) Match(input string) bool {
	if p == nil {
		return false
	}
	if p.globs == nil {
		return RegexSearch(p.re, input)
	}

	matched := false
	p.globs.Each(func(term string) bool {
		if GlobSearch(term, input, p.caseSensitive) {
			matched = true
			return true
		}
		return false
	})
	return matched
}

// Terms returns the number of glob terms, or 1 for a regular expression
func (p *Pattern) Terms() int {
	switch {
	case p.globs != nil:
		return p.globs.Cardinality()
	case p.re != nil:
		return 1
	default:
		return 0
	}
}
