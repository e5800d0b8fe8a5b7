// Package validation checks request parameters against an endpoint's declared
// schema. It is fail-slow: every violation is accumulated so one response can
// report every problem, instead of stopping at the first.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
)

var (
	patternMu    sync.RWMutex
	patternCache = map[string]*regexp.Regexp{}
)

// Validate checks input against the schema and returns the normalized
// parameter map plus every violation found, in schema order.
//
// Values arriving from the query string are plain strings; when the schema
// declares number or boolean, parseable strings are converted and the
// normalized value carries the declared type. Values that are neither the
// declared type nor parseable into it are type violations.
//
// Validation does not recurse into object or array element shapes.
func Validate(schema []models.Parameter, input map[string]any) (map[string]any, []string) {
	normalized := make(map[string]any, len(input))
	var violations []string

	for _, param := range schema {
		raw, present := input[param.Name]
		if !present || raw == nil {
			if param.Required {
				violations = append(violations, fmt.Sprintf("parameter '%s' is required", param.Name))
			}
			continue
		}

		value, ok := coerce(param.Type, raw)
		if !ok {
			violations = append(violations, fmt.Sprintf("parameter '%s' must be a %s", param.Name, param.Type))
			continue
		}
		normalized[param.Name] = value

		violations = append(violations, checkConstraints(param, value)...)
	}

	return normalized, violations
}

// coerce checks raw against the declared type, converting query-string
// values where the declared type demands it.
func coerce(t models.ParamType, raw any) (any, bool) {
	switch t {
	case models.ParamString:
		s, ok := raw.(string)
		return s, ok
	case models.ParamNumber:
		switch v := raw.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case string:
			f, err := strconv.ParseFloat(v, 64)
			return f, err == nil
		}
		return nil, false
	case models.ParamBoolean:
		switch v := raw.(type) {
		case bool:
			return v, true
		case string:
			b, err := strconv.ParseBool(v)
			return b, err == nil
		}
		return nil, false
	case models.ParamObject:
		m, ok := raw.(map[string]any)
		return m, ok
	case models.ParamArray:
		a, ok := raw.([]any)
		return a, ok
	}
	return nil, false
}

// checkConstraints applies min/max/pattern/enum to an already coerced value.
func checkConstraints(param models.Parameter, value any) []string {
	var violations []string

	switch v := value.(type) {
	case float64:
		if param.Min != nil && v < *param.Min {
			violations = append(violations, fmt.Sprintf("parameter '%s' must be >= %g", param.Name, *param.Min))
		}
		if param.Max != nil && v > *param.Max {
			violations = append(violations, fmt.Sprintf("parameter '%s' must be <= %g", param.Name, *param.Max))
		}
	case string:
		if param.Min != nil && float64(len(v)) < *param.Min {
			violations = append(violations, fmt.Sprintf("parameter '%s' must be at least %g characters", param.Name, *param.Min))
		}
		if param.Max != nil && float64(len(v)) > *param.Max {
			violations = append(violations, fmt.Sprintf("parameter '%s' must be at most %g characters", param.Name, *param.Max))
		}
		if param.Pattern != "" && !matchPattern(param.Pattern, v) {
			violations = append(violations, fmt.Sprintf("parameter '%s' must match pattern %s", param.Name, param.Pattern))
		}
		if len(param.Enum) > 0 && !inEnum(param.Enum, v) {
			violations = append(violations, fmt.Sprintf("parameter '%s' must be one of: %s", param.Name, strings.Join(param.Enum, ", ")))
		}
	}

	return violations
}

func inEnum(enum []string, value string) bool {
	for _, e := range enum {
		if e == value {
			return true
		}
	}
	return false
}

// matchPattern compiles lazily and caches. Patterns come from the static
// endpoint registry, so the cache is bounded by the number of declared
// parameters. An invalid pattern is a registry bug and fails the value.
func matchPattern(pattern, value string) bool {
	patternMu.RLock()
	re, ok := patternCache[pattern]
	patternMu.RUnlock()

	if !ok {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return false
		}
		patternMu.Lock()
		patternCache[pattern] = re
		patternMu.Unlock()
	}

	return re.MatchString(value)
}
