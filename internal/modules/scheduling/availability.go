// Package scheduling compiles a team's business rules into a binary program,
// solves it and turns the assignment back into a priced schedule.
package scheduling

import "github.com/aristath/shiftplan/internal/domain"

// Eligible reports whether a developer may hold a decision variable for the slot.
// Juniors only work weekday business hours and never the lunch hour; Mid and
// Senior developers may work any hour, off-hours being priced rather than forbidden.
func Eligible(dev domain.Developer, day, hour int) bool {
	slot := domain.Slot{Day: day, Hour: hour}
	if !slot.Valid() {
		return false
	}
	if dev.Level != domain.LevelJunior {
		return true
	}
	if !slot.IsBusinessHour() {
		return false
	}
	return hour != domain.LunchHour
}
