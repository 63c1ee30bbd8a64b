package pvps

import (
	"errors"
	"fmt"
)

// ErrNoFeasibleDesign is returned by the sizing search when no candidate in
// the catalog meets the functional requirement. It is deliberately distinct
// from configuration errors so callers can branch on it.
var ErrNoFeasibleDesign = errors.New("no feasible design in catalog")

// ErrNonConvergenceBudget is returned when the fraction of non-convergent
// steps in a run exceeds the engine's configured tolerance. Individual
// non-convergent steps are recoverable; a run dominated by them is not.
var ErrNonConvergenceBudget = errors.New("non-convergent step ratio exceeded budget")

// InvalidConfigError reports a structurally invalid input (negative capacity,
// empty weather series, ...). Surfaced before any simulation work begins.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// invalidConfigf builds an InvalidConfigError with a formatted reason.
func invalidConfigf(field, format string, args ...any) error {
	return InvalidConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidConfig reports whether err is (or wraps) an InvalidConfigError.
func IsInvalidConfig(err error) bool {
	var ice InvalidConfigError
	return errors.As(err, &ice)
}
