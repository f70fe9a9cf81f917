package input

import (
	"fmt"
	"strings"
	"time"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/hashicorp/go-multierror"
)

const (
	deployDateLayout = "2006-01-02"
	deployTimeLayout = "15:04"
)

// ValidationError is one problem found in the document
type ValidationError struct {
	Field   string
	Message string
	Err     error // sentinel cause, may be nil
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

type validator struct {
	errs *multierror.Error
}

func (v *validator) add(field string, cause error, format string, args ...interface{}) {
	v.errs = multierror.Append(v.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	})
}

func (v *validator) result() error {
	if v.errs == nil {
		return nil
	}
	v.errs.ErrorFormat = func(errs []error) string {
		msgs := make([]string, 0, len(errs))
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		return fmt.Sprintf("%d problem(s): %s", len(errs), strings.Join(msgs, "; "))
	}
	return &domain.ConfigurationError{Err: v.errs}
}

// Validate checks the whole document and reports every problem at once as a
// *domain.ConfigurationError. A developer without weekly bounds is reported as
// a *domain.MissingConstraintError inside it.
func (d *Document) Validate() error {
	v := &validator{}

	if len(d.Developers) == 0 {
		v.add("developers", nil, "at least one developer is required")
	}
	ids := make(map[int]bool, len(d.Developers))
	for i, dev := range d.Developers {
		field := fmt.Sprintf("developers[%d]", i)
		if dev.DeveloperID == nil {
			v.add(field+".DeveloperID", nil, "is required")
		} else if *dev.DeveloperID < 0 {
			v.add(field+".DeveloperID", nil, "must be >= 0")
		} else if ids[*dev.DeveloperID] {
			v.add(field+".DeveloperID", domain.ErrDuplicateDeveloper, "%d appears more than once", *dev.DeveloperID)
		} else {
			ids[*dev.DeveloperID] = true
		}
		if strings.TrimSpace(dev.Name) == "" {
			v.add(field+".Name", nil, "is required")
		}
		if _, err := domain.ParseLevel(dev.Level); err != nil {
			v.add(field+".Level", domain.ErrInvalidLevel, "%q is not Junior, Mid or Senior", dev.Level)
		}
		if dev.CostPerHour == nil {
			v.add(field+".CostPerHour", nil, "is required")
		} else if *dev.CostPerHour <= 0 {
			v.add(field+".CostPerHour", domain.ErrInvalidRate, "must be greater than 0")
		}
	}

	bounded := make(map[int]bool, len(d.WeeklyConstraints))
	for i, wc := range d.WeeklyConstraints {
		field := fmt.Sprintf("weekly_constraints[%d]", i)
		if wc.DeveloperID == nil {
			v.add(field+".DeveloperID", nil, "is required")
		} else if !ids[*wc.DeveloperID] {
			v.add(field+".DeveloperID", domain.ErrUnknownDeveloper, "developer %d does not exist", *wc.DeveloperID)
		} else if bounded[*wc.DeveloperID] {
			v.add(field+".DeveloperID", domain.ErrDuplicateConstraint, "developer %d already has weekly bounds", *wc.DeveloperID)
		} else {
			bounded[*wc.DeveloperID] = true
		}
		switch {
		case wc.MinimumWeeklyHours == nil || wc.MaximumWeeklyHours == nil:
			v.add(field, nil, "MinimumWeeklyHours and MaximumWeeklyHours are required")
		case *wc.MinimumWeeklyHours < 0,
			*wc.MinimumWeeklyHours > *wc.MaximumWeeklyHours,
			*wc.MaximumWeeklyHours > domain.MaxWeeklyHours:
			v.add(field, domain.ErrInvalidHours, "need 0 <= %d <= %d <= %d",
				*wc.MinimumWeeklyHours, *wc.MaximumWeeklyHours, domain.MaxWeeklyHours)
		}
	}
	for _, dev := range d.Developers {
		if dev.DeveloperID != nil && !bounded[*dev.DeveloperID] {
			v.errs = multierror.Append(v.errs, &domain.MissingConstraintError{DeveloperID: *dev.DeveloperID})
		}
	}

	if r := d.ConstraintsRules; r == nil {
		v.add("constraints_rules", nil, "is required")
	} else {
		if r.OnCallRateMultiplier == nil {
			v.add("constraints_rules.OnCallRateMultiplier", nil, "is required")
		} else if *r.OnCallRateMultiplier <= 0 {
			v.add("constraints_rules.OnCallRateMultiplier", domain.ErrInvalidRate, "must be greater than 0")
		}
		if r.OvertimeRateMultiplier != nil && *r.OvertimeRateMultiplier <= 0 {
			v.add("constraints_rules.OvertimeRateMultiplier", domain.ErrInvalidRate, "must be greater than 0")
		}
		if r.MinimumMidOrSeniorDuringActiveHours == nil {
			v.add("constraints_rules.MinimumMidOrSeniorDuringActiveHours", nil, "is required")
		} else if *r.MinimumMidOrSeniorDuringActiveHours < 0 {
			v.add("constraints_rules.MinimumMidOrSeniorDuringActiveHours", nil, "must be >= 0")
		}
	}

	if a := d.AdditionalConstraints; a == nil || a.WeekendRequiredHeadcount == nil {
		v.add("additional_constraints.WeekendRequiredHeadcount", nil, "is required")
	} else if *a.WeekendRequiredHeadcount < 0 {
		v.add("additional_constraints.WeekendRequiredHeadcount", nil, "must be >= 0")
	}

	for i, rec := range d.Deploys {
		if _, err := parseDeploy(rec); err != nil {
			v.add(fmt.Sprintf("deploys[%d]", i), domain.ErrMalformedDeploy, "%v", err)
		}
	}
	for i, rec := range d.DeploySchedules {
		if _, err := cronParser.Parse(rec.Cron); err != nil {
			v.add(fmt.Sprintf("deploy_schedules[%d].cron", i), domain.ErrMalformedDeploy, "%v", err)
		}
	}

	if d.SchedulingPeriod == nil || d.SchedulingPeriod.Month == "" {
		v.add("scheduling_period.month", nil, "is required")
	} else if _, err := domain.ParsePeriod(d.SchedulingPeriod.Month); err != nil {
		v.add("scheduling_period.month", domain.ErrInvalidPeriod, "%q is not YYYY-MM", d.SchedulingPeriod.Month)
	}

	return v.result()
}

// parseDeploy reads a deploy's wall-clock time. Deploys carry no zone and are read as UTC.
func parseDeploy(rec DeployRecord) (time.Time, error) {
	day, err := time.Parse(deployDateLayout, strings.TrimSpace(rec.Date))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD", rec.Date)
	}
	clock, err := time.Parse(deployTimeLayout, strings.TrimSpace(rec.Time))
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q is not HH:MM", rec.Time)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC), nil
}
