package scheduling

import (
	"fmt"

	"github.com/aristath/shiftplan/internal/domain"
)

// Violation rules
const (
	RuleAvailability       = "availability"
	RuleCoverage           = "coverage"
	RuleWeeklyBounds       = "weekly-bounds"
	RuleActiveMix          = "active-mix"
	RuleWeekendHeadcount   = "weekend-headcount"
	RuleDeployExclusivity  = "deploy-exclusivity"
	RuleUnknownDeveloperID = "unknown-developer"
)

// Violation is a business rule broken by a decoded schedule
type Violation struct {
	Rule   string
	Detail string
}

func (v Violation) String() string {
	return v.Rule + ": " + v.Detail
}

// Verify checks a decoded schedule against the team's rules independently of
// the program that produced it.
func Verify(team *domain.Team, s *Schedule) []Violation {
	var out []Violation
	add := func(rule, format string, args ...interface{}) {
		out = append(out, Violation{Rule: rule, Detail: fmt.Sprintf(format, args...)})
	}

	devs := make(map[int]domain.Developer, len(team.Developers))
	for _, dev := range team.Developers {
		devs[dev.ID] = dev
	}

	for _, id := range s.Developers() {
		dev, ok := devs[id]
		if !ok {
			add(RuleUnknownDeveloperID, "developer %d is not on the team", id)
			continue
		}
		for _, day := range s.Days(id) {
			for _, hour := range s.Hours(id, day) {
				if !Eligible(dev, day, hour) {
					add(RuleAvailability, "%s (%s) assigned to %s", dev.Name, dev.Level, domain.Slot{Day: day, Hour: hour})
				}
			}
		}
	}

	for _, wc := range team.WeeklyConstraints {
		hours := s.WeeklyHours(wc.DeveloperID)
		if hours < wc.MinimumWeeklyHours || hours > wc.MaximumWeeklyHours {
			add(RuleWeeklyBounds, "developer %d works %d hours, allowed [%d, %d]",
				wc.DeveloperID, hours, wc.MinimumWeeklyHours, wc.MaximumWeeklyHours)
		}
	}

	countLevels := func(staff []int, keep func(domain.Level) bool) int {
		n := 0
		for _, id := range staff {
			if dev, ok := devs[id]; ok && keep(dev.Level) {
				n++
			}
		}
		return n
	}

	for day := domain.Monday; day <= domain.Sunday; day++ {
		for hour := 0; hour < domain.HoursPerDay; hour++ {
			slot := domain.Slot{Day: day, Hour: hour}
			staff := s.Staff(slot)
			if len(staff) == 0 {
				add(RuleCoverage, "%s is unstaffed", slot)
			}
			if slot.IsBusinessHour() {
				if n := countLevels(staff, isMidOrSenior); n < team.Rates.MinimumMidOrSeniorDuringActiveHours {
					add(RuleActiveMix, "%s has %d Mid/Senior, need %d", slot, n, team.Rates.MinimumMidOrSeniorDuringActiveHours)
				}
			}
			if slot.IsWeekend() {
				if n := countLevels(staff, isNonJunior); n != team.Rates.WeekendRequiredHeadcount {
					add(RuleWeekendHeadcount, "%s has %d non-Junior, need exactly %d", slot, n, team.Rates.WeekendRequiredHeadcount)
				}
			}
		}
	}

	seen := make(map[domain.Slot]bool)
	for _, deploy := range team.Deploys {
		slot := deploy.Slot()
		if seen[slot] {
			continue
		}
		seen[slot] = true
		staff := s.Staff(slot)
		seniors := countLevels(staff, isSenior)
		others := len(staff) - seniors
		if seniors != 1 || others != 0 {
			add(RuleDeployExclusivity, "deploy at %s staffed by %d Senior and %d other", slot, seniors, others)
		}
	}

	return out
}
