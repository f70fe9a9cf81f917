// Package input reads the scheduling configuration document and turns it into
// a validated domain.Team.
package input

// Document mirrors the configuration file. Required numeric fields are pointers
// so that a missing value can be told apart from zero.
type Document struct {
	Developers            []DeveloperRecord        `json:"developers" yaml:"developers"`
	WeeklyConstraints     []WeeklyConstraintRecord `json:"weekly_constraints" yaml:"weekly_constraints"`
	ConstraintsRules      *RulesRecord             `json:"constraints_rules" yaml:"constraints_rules"`
	AdditionalConstraints *AdditionalRecord        `json:"additional_constraints" yaml:"additional_constraints"`
	Deploys               []DeployRecord           `json:"deploys" yaml:"deploys"`
	DeploySchedules       []DeployScheduleRecord   `json:"deploy_schedules,omitempty" yaml:"deploy_schedules,omitempty"`
	SchedulingPeriod      *PeriodRecord            `json:"scheduling_period" yaml:"scheduling_period"`
}

// DeveloperRecord is one entry of developers[]
type DeveloperRecord struct {
	DeveloperID *int     `json:"DeveloperID" yaml:"DeveloperID"`
	Name        string   `json:"Name" yaml:"Name"`
	Level       string   `json:"Level" yaml:"Level"`
	CostPerHour *float64 `json:"CostPerHour" yaml:"CostPerHour"`
}

// WeeklyConstraintRecord is one entry of weekly_constraints[]
type WeeklyConstraintRecord struct {
	DeveloperID        *int `json:"DeveloperID" yaml:"DeveloperID"`
	MinimumWeeklyHours *int `json:"MinimumWeeklyHours" yaml:"MinimumWeeklyHours"`
	MaximumWeeklyHours *int `json:"MaximumWeeklyHours" yaml:"MaximumWeeklyHours"`
}

// RulesRecord is the constraints_rules object
type RulesRecord struct {
	OnCallRateMultiplier                *float64 `json:"OnCallRateMultiplier" yaml:"OnCallRateMultiplier"`
	OvertimeRateMultiplier              *float64 `json:"OvertimeRateMultiplier,omitempty" yaml:"OvertimeRateMultiplier,omitempty"`
	MinimumMidOrSeniorDuringActiveHours *int     `json:"MinimumMidOrSeniorDuringActiveHours" yaml:"MinimumMidOrSeniorDuringActiveHours"`
}

// AdditionalRecord is the additional_constraints object
type AdditionalRecord struct {
	WeekendRequiredHeadcount *int `json:"WeekendRequiredHeadcount" yaml:"WeekendRequiredHeadcount"`
}

// DeployRecord is one entry of deploys[]: Date is YYYY-MM-DD, Time is HH:MM
type DeployRecord struct {
	Date string `json:"Date" yaml:"Date"`
	Time string `json:"Time" yaml:"Time"`
}

// DeployScheduleRecord is a recurring deploy given as a cron expression
type DeployScheduleRecord struct {
	Cron        string `json:"cron" yaml:"cron"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PeriodRecord is the scheduling_period object
type PeriodRecord struct {
	Month string `json:"month" yaml:"month"`
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 { return &v }
