// Package runner implements the stage lifecycle shared by every pipeline
// component: setup, task_pre, task, task_post, and the outcome taxonomy
// that composes across parallel stages.
package runner

import "fmt"

// Outcome is the result kind every stage produces. The zero value is
// Invalid, matching "never-run/initial".
type Outcome int

const (
	Invalid Outcome = iota
	Busy
	Timeout
	Ignore
	Error
	Complete
)

func (o Outcome) String() string {
	switch o {
	case Invalid:
		return "INVALID"
	case Busy:
		return "BUSY"
	case Timeout:
		return "TIMEOUT"
	case Ignore:
		return "IGNORE"
	case Error:
		return "ERROR"
	case Complete:
		return "COMPLETE"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// priority ranks outcomes for stage-composition, independent of the
// declaration order above: TIMEOUT > ERROR > IGNORE > COMPLETE > BUSY >
// INVALID. The source enum's declaration order does not match this rule,
// so it is expressed as an explicit table rather than relying on the
// constants' numeric values.
var priority = map[Outcome]int{
	Timeout: 6,
	Error:   5,
	Ignore:  4,
	Complete: 3,
	Busy:    2,
	Invalid: 1,
}

// Dominant returns the highest-priority outcome among those given. Used
// wherever two or more stages run in parallel and must compose into one
// outcome (Compare, RefCovRunner).
func Dominant(outcomes ...Outcome) Outcome {
	best := Invalid
	for _, o := range outcomes {
		if priority[o] > priority[best] {
			best = o
		}
	}
	return best
}

// Result is the (outcome, payload) pair every stage returns.
type Result struct {
	Outcome Outcome
	Payload any
}
