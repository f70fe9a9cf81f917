// Package report turns a produced schedule into a printable document and publishes it.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/aristath/shiftplan/internal/modules/scheduling"
)

// ErrNoSchedule is returned when a report is requested for a run without an optimal schedule
var ErrNoSchedule = errors.New("run produced no schedule")

// Standby windows on weekdays. Weekends are a single all-day window.
var (
	earlyStandby = Window{Label: "00:00-08:00", Start: 0, End: domain.BusinessStartHour}
	lateStandby  = Window{Label: "17:00-24:00", Start: domain.BusinessEndHour, End: domain.HoursPerDay}
	weekendDay   = Window{Label: "00:00-24:00", Start: 0, End: domain.HoursPerDay}
)

// Window is a half-open hour range [Start, End) within a day
type Window struct {
	Label string
	Start int
	End   int
}

// StaffShifts lists the shifts one developer covers inside a window
type StaffShifts struct {
	DeveloperID int
	Name        string
	Level       domain.Level
	Shifts      []scheduling.Shift
}

// StandbyWindow is the standby coverage of one window
type StandbyWindow struct {
	Window Window
	Staff  []StaffShifts
}

// DaySection is one calendar day of the period
type DaySection struct {
	Date       time.Time
	Weekday    int // ISO 1..7
	Weekend    bool
	Commercial []StaffShifts
	Standby    []StandbyWindow
	Deploys    []domain.DeployEvent
}

// DeveloperDay is what a developer works on one weekday of the template week
type DeveloperDay struct {
	Day    int
	Shifts []scheduling.Shift
}

// DeveloperSection is the weekly shift listing of one developer
type DeveloperSection struct {
	Developer domain.Developer
	Days      []DeveloperDay
	Hours     int
}

// Document is everything a renderer needs. It is read-only once built.
type Document struct {
	RunID       string
	Title       string
	Period      domain.Period
	GeneratedAt time.Time
	Rates       domain.PolicyRates
	Objective   float64
	Developers  []DeveloperSection
	Days        []DaySection // empty when the team has no period
	Weekly      *scheduling.Summary
	Monthly     *scheduling.MonthlySummary
}

// NewDocument builds the report model of a produced run
func NewDocument(team *domain.Team, out *scheduling.Outcome, now time.Time) (*Document, error) {
	if out == nil || !out.Produced() || out.Summary == nil {
		return nil, ErrNoSchedule
	}

	doc := &Document{
		RunID:       out.RunID,
		Title:       "Developer schedule",
		Period:      team.Period,
		GeneratedAt: now.UTC(),
		Rates:       team.Rates,
		Objective:   out.Objective,
		Weekly:      out.Summary,
		Monthly:     out.Monthly,
	}
	if team.Period.Year != 0 {
		doc.Title = fmt.Sprintf("Developer schedule %s", team.Period)
	}

	for _, dev := range team.Developers {
		section := DeveloperSection{Developer: dev, Hours: out.Schedule.WeeklyHours(dev.ID)}
		for _, day := range out.Schedule.Days(dev.ID) {
			section.Days = append(section.Days, DeveloperDay{Day: day, Shifts: out.Schedule.Shifts(dev.ID, day)})
		}
		doc.Developers = append(doc.Developers, section)
	}

	if team.Period.Year != 0 {
		deploys := deploysByDate(team.Deploys)
		for _, date := range team.Period.Days() {
			day := buildDay(team.Developers, out.Schedule, date)
			day.Deploys = deploys[date.Format(time.DateOnly)]
			doc.Days = append(doc.Days, day)
		}
	}

	return doc, nil
}

// Deploys returns every deploy listed in the document, in time order
func (d *Document) Deploys() []domain.DeployEvent {
	var out []domain.DeployEvent
	for _, day := range d.Days {
		out = append(out, day.Deploys...)
	}
	return out
}

func buildDay(developers []domain.Developer, s *scheduling.Schedule, date time.Time) DaySection {
	weekday := domain.ISOWeekday(date)
	day := DaySection{Date: date, Weekday: weekday, Weekend: domain.IsWeekend(weekday)}

	if day.Weekend {
		day.Standby = []StandbyWindow{{Window: weekendDay, Staff: staffIn(developers, s, weekday, weekendDay)}}
		return day
	}

	business := Window{Start: domain.BusinessStartHour, End: domain.BusinessEndHour}
	day.Commercial = staffIn(developers, s, weekday, business)
	day.Standby = []StandbyWindow{
		{Window: earlyStandby, Staff: staffIn(developers, s, weekday, earlyStandby)},
		{Window: lateStandby, Staff: staffIn(developers, s, weekday, lateStandby)},
	}
	return day
}

// staffIn clips every developer's hours of the weekday to the window
func staffIn(developers []domain.Developer, s *scheduling.Schedule, weekday int, w Window) []StaffShifts {
	var out []StaffShifts
	for _, dev := range developers {
		var hours []int
		for _, h := range s.Hours(dev.ID, weekday) {
			if h >= w.Start && h < w.End {
				hours = append(hours, h)
			}
		}
		if len(hours) == 0 {
			continue
		}
		out = append(out, StaffShifts{
			DeveloperID: dev.ID,
			Name:        dev.Name,
			Level:       dev.Level,
			Shifts:      scheduling.MergeShifts(hours),
		})
	}
	return out
}

func deploysByDate(deploys []domain.DeployEvent) map[string][]domain.DeployEvent {
	sorted := append([]domain.DeployEvent(nil), deploys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	out := make(map[string][]domain.DeployEvent)
	for _, d := range sorted {
		key := d.At.UTC().Format(time.DateOnly)
		out[key] = append(out[key], d)
	}
	return out
}

func formatShifts(shifts []scheduling.Shift) string {
	parts := make([]string, len(shifts))
	for i, sh := range shifts {
		parts[i] = sh.String()
	}
	return strings.Join(parts, ", ")
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
