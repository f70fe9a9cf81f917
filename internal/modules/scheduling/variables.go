package scheduling

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/aristath/shiftplan/internal/domain"
)

var varNamePattern = regexp.MustCompile(`^x_([0-9]+)_D([0-9]+)_H([0-9]+)$`)

// VarKey is the typed identity of a decision variable: developer, day and hour
type VarKey struct {
	DeveloperID int
	Day         int
	Hour        int
}

// Name renders the solver-facing identity, x_<dev>_D<day>_H<hour>
func (k VarKey) Name() string {
	return fmt.Sprintf("x_%d_D%d_H%d", k.DeveloperID, k.Day, k.Hour)
}

// Slot returns the (day, hour) part of the key
func (k VarKey) Slot() domain.Slot {
	return domain.Slot{Day: k.Day, Hour: k.Hour}
}

// ParseVarKey is the inverse of Name. Only canonical names are accepted:
// no leading zeros, day in 1..7, hour in 0..23.
func ParseVarKey(name string) (VarKey, error) {
	m := varNamePattern.FindStringSubmatch(name)
	if m == nil {
		return VarKey{}, fmt.Errorf("%w: %q", domain.ErrMalformedVariable, name)
	}
	dev, err1 := strconv.Atoi(m[1])
	day, err2 := strconv.Atoi(m[2])
	hour, err3 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return VarKey{}, fmt.Errorf("%w: %q: number out of range", domain.ErrMalformedVariable, name)
	}

	key := VarKey{DeveloperID: dev, Day: day, Hour: hour}
	if !key.Slot().Valid() {
		return VarKey{}, fmt.Errorf("%w: %q: slot out of range", domain.ErrMalformedVariable, name)
	}
	if key.Name() != name {
		return VarKey{}, fmt.Errorf("%w: %q: not canonical", domain.ErrMalformedVariable, name)
	}
	return key, nil
}
