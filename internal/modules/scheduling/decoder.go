package scheduling

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/rs/zerolog"
)

const truthTolerance = 1e-6

// Shift is a half-open run of consecutive worked hours, [Start, End)
type Shift struct {
	Start int
	End   int
}

// Hours returns the length of the shift
func (s Shift) Hours() int {
	return s.End - s.Start
}

func (s Shift) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", s.Start, s.End)
}

// MergeShifts groups sorted hours into maximal runs of consecutive integers
func MergeShifts(hours []int) []Shift {
	if len(hours) == 0 {
		return nil
	}
	shifts := []Shift{{Start: hours[0], End: hours[0] + 1}}
	for _, h := range hours[1:] {
		last := &shifts[len(shifts)-1]
		if h == last.End {
			last.End = h + 1
			continue
		}
		shifts = append(shifts, Shift{Start: h, End: h + 1})
	}
	return shifts
}

// DecodeAnomaly is a returned variable that could not be mapped back into the schedule
type DecodeAnomaly struct {
	Name  string
	Value float64
	Err   error
}

func (a DecodeAnomaly) Error() string {
	return fmt.Sprintf("%s=%g: %v", a.Name, a.Value, a.Err)
}

// Schedule is the read-only view DeveloperID -> Day -> ascending worked hours.
// It is only produced by Decode.
type Schedule struct {
	hours map[int]map[int][]int
}

// Decode maps a solver assignment back into a schedule. Variables valued 0 or
// absent contribute nothing; names outside the identity grammar and values that
// are neither 0 nor 1 are skipped and reported as anomalies.
func Decode(assignment map[string]float64, log zerolog.Logger) (*Schedule, []DecodeAnomaly) {
	s := &Schedule{hours: make(map[int]map[int][]int)}
	var anomalies []DecodeAnomaly

	for name, value := range assignment {
		if math.Abs(value) <= truthTolerance {
			continue
		}
		if math.Abs(value-1) > truthTolerance {
			anomalies = append(anomalies, DecodeAnomaly{Name: name, Value: value, Err: fmt.Errorf("non-binary value")})
			continue
		}
		key, err := ParseVarKey(name)
		if err != nil {
			anomalies = append(anomalies, DecodeAnomaly{Name: name, Value: value, Err: err})
			continue
		}
		days, ok := s.hours[key.DeveloperID]
		if !ok {
			days = make(map[int][]int)
			s.hours[key.DeveloperID] = days
		}
		days[key.Day] = append(days[key.Day], key.Hour)
	}

	for _, days := range s.hours {
		for _, hours := range days {
			sort.Ints(hours)
		}
	}

	sort.Slice(anomalies, func(i, j int) bool { return anomalies[i].Name < anomalies[j].Name })
	for _, a := range anomalies {
		log.Warn().
			Str("variable", a.Name).
			Float64("value", a.Value).
			Err(a.Err).
			Msg("Skipping undecodable variable")
	}

	return s, anomalies
}

// Developers lists the developers with at least one worked hour, ascending
func (s *Schedule) Developers() []int {
	ids := make([]int, 0, len(s.hours))
	for id := range s.hours {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Days lists the days a developer works, ascending
func (s *Schedule) Days(developerID int) []int {
	days := make([]int, 0, len(s.hours[developerID]))
	for day := range s.hours[developerID] {
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

// Hours returns a copy of the hours worked by a developer on a day
func (s *Schedule) Hours(developerID, day int) []int {
	hours := s.hours[developerID][day]
	out := make([]int, len(hours))
	copy(out, hours)
	return out
}

// Shifts returns the merged shifts of a developer on a day
func (s *Schedule) Shifts(developerID, day int) []Shift {
	return MergeShifts(s.hours[developerID][day])
}

// Works reports whether a developer is assigned to the slot
func (s *Schedule) Works(developerID, day, hour int) bool {
	hours := s.hours[developerID][day]
	i := sort.SearchInts(hours, hour)
	return i < len(hours) && hours[i] == hour
}

// WeeklyHours returns the total hours a developer works in the week
func (s *Schedule) WeeklyHours(developerID int) int {
	total := 0
	for _, hours := range s.hours[developerID] {
		total += len(hours)
	}
	return total
}

// Staff lists the developers assigned to a slot, ascending
func (s *Schedule) Staff(slot domain.Slot) []int {
	var ids []int
	for _, id := range s.Developers() {
		if s.Works(id, slot.Day, slot.Hour) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Assignment re-encodes the schedule as solver variable values (worked hours only)
func (s *Schedule) Assignment() map[string]float64 {
	out := make(map[string]float64)
	for id, days := range s.hours {
		for day, hours := range days {
			for _, hour := range hours {
				out[VarKey{DeveloperID: id, Day: day, Hour: hour}.Name()] = 1
			}
		}
	}
	return out
}
