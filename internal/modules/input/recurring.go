package input

import (
	"fmt"
	"time"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/robfig/cron/v3"
)

// maxActivations bounds the expansion of one expression over a month
const maxActivations = 31 * 24 * 60

// Standard 5-field expressions plus descriptors such as "@daily" or "@every 6h"
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ExpandSchedule lists every activation of a cron expression inside the period, in order.
// Examples:
//   - "0 22 * * FRI"  - every Friday at 22:00
//   - "30 6 1 * *"    - 06:30 on the first day of the month
func ExpandSchedule(expr string, period domain.Period) ([]time.Time, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: cron %q: %v", domain.ErrMalformedDeploy, expr, err)
	}

	var out []time.Time
	end := period.End()
	for t := sched.Next(period.Start().Add(-time.Second)); !t.IsZero() && t.Before(end); t = sched.Next(t) {
		if len(out) == maxActivations {
			return nil, fmt.Errorf("%w: cron %q fires more than %d times in %s", domain.ErrMalformedDeploy, expr, maxActivations, period)
		}
		out = append(out, t)
	}
	return out, nil
}

// expandDeploySchedules turns deploy_schedules into deploy events. Activations
// mapping to a weekly slot that is already taken are dropped, so each schedule
// contributes at most one event per slot.
func expandDeploySchedules(records []DeployScheduleRecord, period domain.Period, taken map[domain.Slot]bool) ([]domain.DeployEvent, error) {
	var events []domain.DeployEvent
	for i, rec := range records {
		times, err := ExpandSchedule(rec.Cron, period)
		if err != nil {
			return nil, fmt.Errorf("deploy_schedules[%d]: %w", i, err)
		}
		for _, at := range times {
			ev := domain.DeployEvent{At: at, Source: fmt.Sprintf("deploy_schedules[%d]", i)}
			if taken[ev.Slot()] {
				continue
			}
			taken[ev.Slot()] = true
			events = append(events, ev)
		}
	}
	return events, nil
}
