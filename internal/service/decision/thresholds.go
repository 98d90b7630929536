package decision

import (
	"errors"
	"time"
)

// Thresholds are the tunable windows and counts behind the rule table.
type Thresholds struct {
	GreetingCooldown time.Duration

	UserWaitMin time.Duration
	UserWaitMax time.Duration

	SaturationMinThoughts       int
	SaturationMinNonObservation int
	SaturationIdle              time.Duration

	FlowIdle              time.Duration
	FlowMinConversational int

	AccumulatedMinThoughts int
	AccumulatedIdle        time.Duration

	Commands  []string
	Greetings []string
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		GreetingCooldown:            10 * time.Second,
		UserWaitMin:                 8 * time.Second,
		UserWaitMax:                 15 * time.Second,
		SaturationMinThoughts:       6,
		SaturationMinNonObservation: 3,
		SaturationIdle:              25 * time.Second,
		FlowIdle:                    30 * time.Second,
		FlowMinConversational:       2,
		AccumulatedMinThoughts:      4,
		AccumulatedIdle:             45 * time.Second,
		Commands:                    []string{"search", "tell me", "explain", "show me"},
		Greetings:                   []string{"hi", "hello", "hey", "sup"},
	}
}

func (t Thresholds) Validate() error {
	var errs []error
	if t.UserWaitMin < 0 || t.UserWaitMax <= t.UserWaitMin {
		errs = append(errs, errors.New("user wait window must satisfy 0 <= min < max"))
	}
	if t.SaturationMinThoughts <= 0 || t.AccumulatedMinThoughts <= 0 {
		errs = append(errs, errors.New("thought count thresholds must be positive"))
	}
	if t.SaturationMinNonObservation < 0 || t.FlowMinConversational < 0 {
		errs = append(errs, errors.New("source count thresholds must not be negative"))
	}
	if t.GreetingCooldown < 0 || t.SaturationIdle < 0 || t.FlowIdle < 0 || t.AccumulatedIdle < 0 {
		errs = append(errs, errors.New("idle windows must not be negative"))
	}
	return errors.Join(errs...)
}
