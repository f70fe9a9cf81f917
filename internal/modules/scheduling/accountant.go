package scheduling

import (
	"fmt"

	"github.com/aristath/shiftplan/internal/domain"
)

// DeveloperSummary holds worked hours and pay for one developer
type DeveloperSummary struct {
	Name            string
	DeveloperID     int
	Level           domain.Level
	Hours           int
	CommercialHours int // weekday [08:00, 17:00)
	StandbyHours    int // everything else
	CommercialCost  float64
	StandbyCost     float64
	Cost            float64
}

// Summary is the cost accounting of a weekly schedule
type Summary struct {
	Developers []DeveloperSummary // in team order
	TotalHours int
	TotalCost  float64
}

// Developer returns the summary line of one developer
func (s *Summary) Developer(id int) (DeveloperSummary, bool) {
	for _, d := range s.Developers {
		if d.DeveloperID == id {
			return d, true
		}
	}
	return DeveloperSummary{}, false
}

// PerDeveloperHours maps DeveloperID to worked hours
func (s *Summary) PerDeveloperHours() map[int]int {
	out := make(map[int]int, len(s.Developers))
	for _, d := range s.Developers {
		out[d.DeveloperID] = d.Hours
	}
	return out
}

// PerDeveloperCost maps DeveloperID to pay
func (s *Summary) PerDeveloperCost() map[int]float64 {
	out := make(map[int]float64, len(s.Developers))
	for _, d := range s.Developers {
		out[d.DeveloperID] = d.Cost
	}
	return out
}

// MonthlySummary projects the weekly schedule onto every day of the period
type MonthlySummary struct {
	Period     domain.Period
	Developers []DeveloperSummary
	TotalHours int
	TotalCost  float64
}

// Summarize re-derives hours and pay from the schedule with TierRate
func Summarize(s *Schedule, developers []domain.Developer, rates domain.PolicyRates) (*Summary, error) {
	var weights [domain.DaysPerWeek + 1]int
	for day := domain.Monday; day <= domain.Sunday; day++ {
		weights[day] = 1
	}
	lines, hours, cost, err := accumulate(s, developers, rates, weights)
	if err != nil {
		return nil, err
	}
	return &Summary{Developers: lines, TotalHours: hours, TotalCost: cost}, nil
}

// SummarizeMonth weighs each weekday by the number of times it occurs in the period
func SummarizeMonth(s *Schedule, developers []domain.Developer, rates domain.PolicyRates, period domain.Period) (*MonthlySummary, error) {
	lines, hours, cost, err := accumulate(s, developers, rates, period.WeekdayCounts())
	if err != nil {
		return nil, err
	}
	return &MonthlySummary{Period: period, Developers: lines, TotalHours: hours, TotalCost: cost}, nil
}

func accumulate(
	s *Schedule,
	developers []domain.Developer,
	rates domain.PolicyRates,
	weights [domain.DaysPerWeek + 1]int,
) ([]DeveloperSummary, int, float64, error) {
	known := make(map[int]struct{}, len(developers))
	for _, dev := range developers {
		known[dev.ID] = struct{}{}
	}
	for _, id := range s.Developers() {
		if _, ok := known[id]; !ok {
			return nil, 0, 0, fmt.Errorf("%w: schedule references developer %d", domain.ErrUnknownDeveloper, id)
		}
	}

	lines := make([]DeveloperSummary, 0, len(developers))
	totalHours := 0
	totalCost := 0.0
	for _, dev := range developers {
		line := DeveloperSummary{DeveloperID: dev.ID, Name: dev.Name, Level: dev.Level}
		for _, day := range s.Days(dev.ID) {
			w := weights[day]
			for _, hour := range s.Hours(dev.ID, day) {
				price := TierRate(dev, rates, day, hour) * float64(w)
				if (domain.Slot{Day: day, Hour: hour}).IsBusinessHour() {
					line.CommercialHours += w
					line.CommercialCost += price
				} else {
					line.StandbyHours += w
					line.StandbyCost += price
				}
			}
		}
		line.Hours = line.CommercialHours + line.StandbyHours
		line.Cost = line.CommercialCost + line.StandbyCost
		totalHours += line.Hours
		totalCost += line.Cost
		lines = append(lines, line)
	}
	return lines, totalHours, totalCost, nil
}
