package ranking

import (
	"fmt"
	"math"
	"strings"

	"github.com/poiesic/bioorbit/core"
)

// MissingStabilityPolicy decides what the stability filter does with a
// candidate that has no ΔG.
type MissingStabilityPolicy int

const (
	// TreatMissingAsZero compares a missing ΔG as 0 kcal/mol. With the
	// usual negative thresholds this excludes the candidate.
	TreatMissingAsZero MissingStabilityPolicy = iota
	// IncludeMissing always keeps candidates without a ΔG.
	IncludeMissing
	// ExcludeMissing always drops candidates without a ΔG.
	ExcludeMissing
)

func (p MissingStabilityPolicy) String() string {
	switch p {
	case TreatMissingAsZero:
		return "zero"
	case IncludeMissing:
		return "include"
	case ExcludeMissing:
		return "exclude"
	}
	return fmt.Sprintf("MissingStabilityPolicy(%d)", int(p))
}

// ParseMissingStabilityPolicy accepts the names produced by String.
func ParseMissingStabilityPolicy(s string) (MissingStabilityPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zero", "":
		return TreatMissingAsZero, nil
	case "include":
		return IncludeMissing, nil
	case "exclude":
		return ExcludeMissing, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

// passesStability reports whether c's ΔG is at or below maxDeltaG.
// A NaN threshold disables the filter.
func passesStability(c *core.Candidate, maxDeltaG float64, policy MissingStabilityPolicy) bool {
	if math.IsNaN(maxDeltaG) {
		return true
	}
	if c.DeltaG == nil {
		switch policy {
		case IncludeMissing:
			return true
		case ExcludeMissing:
			return false
		default:
			return 0 <= maxDeltaG
		}
	}
	return *c.DeltaG <= maxDeltaG
}
