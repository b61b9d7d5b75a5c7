package strategyconfig

import (
	"fmt"
	"math"
	"regexp"
)

// ValidationError 검증 실패
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks all required constraints
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return ValidationError{"version", "required"}
	}

	seen := make(map[string]bool, len(cfg.Strategies))
	for i, s := range cfg.Strategies {
		field := fmt.Sprintf("strategies[%d]", i)

		if !idPattern.MatchString(s.ID) {
			return ValidationError{field + ".id", "must match " + idPattern.String()}
		}
		if seen[s.ID] {
			return ValidationError{field + ".id", fmt.Sprintf("duplicate id %q", s.ID)}
		}
		seen[s.ID] = true

		if s.Allocation < 0 || math.IsNaN(s.Allocation) || math.IsInf(s.Allocation, 0) {
			return ValidationError{field + ".allocation", "must be a finite value >= 0"}
		}

		for name, p := range s.Params {
			if err := ValidateParam(p); err != nil {
				return ValidationError{fmt.Sprintf("%s.params.%s", field, name), err.Error()}
			}
		}
	}

	return nil
}

// ValidateParam checks a single parameter against its bounds
func ValidateParam(p Param) error {
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return fmt.Errorf("value must be finite")
	}
	if !p.Bounded() {
		return nil
	}
	if p.Min > p.Max {
		return fmt.Errorf("min %.4g > max %.4g", p.Min, p.Max)
	}
	if p.Value < p.Min || p.Value > p.Max {
		return fmt.Errorf("value %.4g outside [%.4g, %.4g]", p.Value, p.Min, p.Max)
	}
	return nil
}
