// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Calendar constants shared by every stage of the pipeline.
const (
	DaysPerWeek = 7
	HoursPerDay = 24

	// Days are ISO weekdays: 1 = Monday ... 7 = Sunday
	Monday   = 1
	Friday   = 5
	Saturday = 6
	Sunday   = 7

	BusinessStartHour = 8  // first hour of the business window
	BusinessEndHour   = 17 // exclusive
	LunchHour         = 12

	MaxWeeklyHours = DaysPerWeek * HoursPerDay
)

// Level represents developer seniority
type Level int

const (
	LevelJunior Level = iota + 1
	LevelMid
	LevelSenior
)

// String returns the canonical level name
func (l Level) String() string {
	switch l {
	case LevelJunior:
		return "Junior"
	case LevelMid:
		return "Mid"
	case LevelSenior:
		return "Senior"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Valid reports whether l is one of the known levels
func (l Level) Valid() bool {
	return l >= LevelJunior && l <= LevelSenior
}

// ParseLevel parses a seniority name. Besides the canonical names it accepts
// the Portuguese names used by older rosters ("Pleno", "Sênior").
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "junior", "júnior":
		return LevelJunior, nil
	case "mid", "pleno":
		return LevelMid, nil
	case "senior", "sênior":
		return LevelSenior, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// Developer is a team member that can be scheduled
type Developer struct {
	Name        string
	ID          int
	Level       Level
	CostPerHour float64
}

// WeeklyConstraint bounds the hours a developer works in one week
type WeeklyConstraint struct {
	DeveloperID        int
	MinimumWeeklyHours int
	MaximumWeeklyHours int
}

// PolicyRates holds the process-wide constants of one run.
// OvertimeRateMultiplier is carried for reporting; pricing only uses the on-call multiplier.
type PolicyRates struct {
	OnCallRateMultiplier                float64
	OvertimeRateMultiplier              float64
	MinimumMidOrSeniorDuringActiveHours int
	WeekendRequiredHeadcount            int
}

// Slot identifies one hour of the scheduling week
type Slot struct {
	Day  int // 1..7
	Hour int // 0..23
}

// Valid reports whether the slot lies inside the week
func (s Slot) Valid() bool {
	return s.Day >= Monday && s.Day <= Sunday && s.Hour >= 0 && s.Hour < HoursPerDay
}

// IsWeekend reports whether the slot falls on Saturday or Sunday
func (s Slot) IsWeekend() bool {
	return IsWeekend(s.Day)
}

// IsBusinessHour reports whether the slot is inside the weekday [08:00, 17:00) window
func (s Slot) IsBusinessHour() bool {
	return !IsWeekend(s.Day) && s.Hour >= BusinessStartHour && s.Hour < BusinessEndHour
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %02d:00", DayName(s.Day), s.Hour)
}

// IsWeekend reports whether an ISO weekday is Saturday or Sunday
func IsWeekend(day int) bool {
	return day >= Saturday
}

// DayName returns the English name of an ISO weekday
func DayName(day int) string {
	if day < Monday || day > Sunday {
		return fmt.Sprintf("Day(%d)", day)
	}
	return ISOWeekdayToTime(day).String()
}

// ISOWeekday maps a date to 1 = Monday ... 7 = Sunday
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return wd
}

// ISOWeekdayToTime maps 1..7 back to time.Weekday
func ISOWeekdayToTime(day int) time.Weekday {
	return time.Weekday(day % 7)
}

// DeployEvent is a scheduled release that needs exclusive Senior staffing
type DeployEvent struct {
	At     time.Time
	Source string // "deploys[2]", "deploy_schedules[0]", ...
}

// Slot maps the deploy to its canonical weekly slot
func (d DeployEvent) Slot() Slot {
	return Slot{Day: ISOWeekday(d.At), Hour: d.At.Hour()}
}

// Team bundles the validated inputs of one scheduling run
type Team struct {
	Period            Period
	Developers        []Developer
	WeeklyConstraints []WeeklyConstraint
	Deploys           []DeployEvent
	Rates             PolicyRates
}

// Developer looks up a developer by ID
func (t *Team) Developer(id int) (Developer, bool) {
	for _, dev := range t.Developers {
		if dev.ID == id {
			return dev, true
		}
	}
	return Developer{}, false
}

// WeeklyConstraint looks up the weekly bounds of a developer
func (t *Team) WeeklyConstraint(developerID int) (WeeklyConstraint, bool) {
	for _, wc := range t.WeeklyConstraints {
		if wc.DeveloperID == developerID {
			return wc, true
		}
	}
	return WeeklyConstraint{}, false
}
