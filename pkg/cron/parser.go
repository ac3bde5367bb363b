// Package cron parses the schedules of periodic background checks.
package cron

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrInvalidSchedule = errors.New("invalid schedule expression")

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Schedule accepts five-field expressions and descriptors such as
// "@hourly" or "@every 1m".
type Schedule struct {
	expr string
	spec cron.Schedule
}

func Parse(expr string) (Schedule, error) {
	if expr == "" {
		return Schedule{}, ErrInvalidSchedule
	}

	spec, err := parser.Parse(expr)
	if err != nil {
		return Schedule{}, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, expr, err)
	}

	return Schedule{
		expr: expr,
		spec: spec,
	}, nil
}

func (s Schedule) String() string {
	return s.expr
}

// Next returns the first activation after from, or the zero time for an
// unparsed schedule.
func (s Schedule) Next(from time.Time) time.Time {
	if s.spec == nil {
		return time.Time{}
	}

	return s.spec.Next(from)
}
