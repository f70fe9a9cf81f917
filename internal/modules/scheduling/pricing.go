package scheduling

import "github.com/aristath/shiftplan/internal/domain"

// TierRate is the price of one hour of work. It is shared by the objective
// coefficients and the cost reconstruction so both always agree.
func TierRate(dev domain.Developer, rates domain.PolicyRates, day, hour int) float64 {
	if (domain.Slot{Day: day, Hour: hour}).IsBusinessHour() {
		return dev.CostPerHour
	}
	return dev.CostPerHour * rates.OnCallRateMultiplier
}
