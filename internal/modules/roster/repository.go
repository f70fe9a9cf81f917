// Package roster stores the team in SQLite and exposes it as an input document.
package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aristath/shiftplan/internal/database"
	"github.com/aristath/shiftplan/internal/domain"
	"github.com/aristath/shiftplan/internal/modules/input"
	"github.com/rs/zerolog"
)

// ErrNoPolicy is returned when the roster has no policy row for the requested month
var ErrNoPolicy = errors.New("roster: no policy for month")

// Repository reads and writes the roster database
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a roster repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "roster").Logger(),
	}
}

// LoadDocument assembles the input document for a month (YYYY-MM) from the
// active developers, their weekly bounds and the month's policy and deploys.
func (r *Repository) LoadDocument(ctx context.Context, month string) (*input.Document, error) {
	if _, err := domain.ParsePeriod(month); err != nil {
		return nil, err
	}

	doc := &input.Document{SchedulingPeriod: &input.PeriodRecord{Month: month}}

	var err error
	if doc.Developers, err = r.developers(ctx); err != nil {
		return nil, err
	}
	if doc.WeeklyConstraints, err = r.weeklyConstraints(ctx); err != nil {
		return nil, err
	}
	if err = r.policy(ctx, month, doc); err != nil {
		return nil, err
	}
	if doc.Deploys, err = r.deploys(ctx, month); err != nil {
		return nil, err
	}
	if doc.DeploySchedules, err = r.deploySchedules(ctx, month); err != nil {
		return nil, err
	}

	r.log.Debug().
		Str("month", month).
		Int("developers", len(doc.Developers)).
		Int("deploys", len(doc.Deploys)).
		Int("deploy_schedules", len(doc.DeploySchedules)).
		Msg("Loaded roster")

	return doc, nil
}

func (r *Repository) developers(ctx context.Context) ([]input.DeveloperRecord, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT id, name, level, cost_per_hour
		FROM developers
		WHERE active = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query developers: %w", err)
	}
	defer rows.Close()

	var out []input.DeveloperRecord
	for rows.Next() {
		var (
			id   int
			cost float64
			rec  input.DeveloperRecord
		)
		if err := rows.Scan(&id, &rec.Name, &rec.Level, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan developer: %w", err)
		}
		rec.DeveloperID = input.IntPtr(id)
		rec.CostPerHour = input.FloatPtr(cost)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) weeklyConstraints(ctx context.Context) ([]input.WeeklyConstraintRecord, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT w.developer_id, w.minimum_weekly_hours, w.maximum_weekly_hours
		FROM weekly_constraints w
		JOIN developers d ON d.id = w.developer_id
		WHERE d.active = 1
		ORDER BY w.developer_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly constraints: %w", err)
	}
	defer rows.Close()

	var out []input.WeeklyConstraintRecord
	for rows.Next() {
		var id, lo, hi int
		if err := rows.Scan(&id, &lo, &hi); err != nil {
			return nil, fmt.Errorf("failed to scan weekly constraint: %w", err)
		}
		out = append(out, input.WeeklyConstraintRecord{
			DeveloperID:        input.IntPtr(id),
			MinimumWeeklyHours: input.IntPtr(lo),
			MaximumWeeklyHours: input.IntPtr(hi),
		})
	}
	return out, rows.Err()
}

func (r *Repository) policy(ctx context.Context, month string, doc *input.Document) error {
	var (
		onCall    float64
		overtime  sql.NullFloat64
		minSenior int
		weekend   int
	)
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT on_call_rate_multiplier, overtime_rate_multiplier, minimum_mid_or_senior, weekend_required_headcount
		FROM policies
		WHERE month = ?
	`, month).Scan(&onCall, &overtime, &minSenior, &weekend)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w %s", ErrNoPolicy, month)
	}
	if err != nil {
		return fmt.Errorf("failed to query policy: %w", err)
	}

	doc.ConstraintsRules = &input.RulesRecord{
		OnCallRateMultiplier:                input.FloatPtr(onCall),
		MinimumMidOrSeniorDuringActiveHours: input.IntPtr(minSenior),
	}
	if overtime.Valid {
		doc.ConstraintsRules.OvertimeRateMultiplier = input.FloatPtr(overtime.Float64)
	}
	doc.AdditionalConstraints = &input.AdditionalRecord{WeekendRequiredHeadcount: input.IntPtr(weekend)}
	return nil
}

func (r *Repository) deploys(ctx context.Context, month string) ([]input.DeployRecord, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT deploy_date, deploy_time FROM deploys WHERE month = ? ORDER BY id
	`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query deploys: %w", err)
	}
	defer rows.Close()

	var out []input.DeployRecord
	for rows.Next() {
		var rec input.DeployRecord
		if err := rows.Scan(&rec.Date, &rec.Time); err != nil {
			return nil, fmt.Errorf("failed to scan deploy: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) deploySchedules(ctx context.Context, month string) ([]input.DeployScheduleRecord, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT cron, description FROM deploy_schedules WHERE month = ? ORDER BY id
	`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query deploy schedules: %w", err)
	}
	defer rows.Close()

	var out []input.DeployScheduleRecord
	for rows.Next() {
		var rec input.DeployScheduleRecord
		if err := rows.Scan(&rec.Cron, &rec.Description); err != nil {
			return nil, fmt.Errorf("failed to scan deploy schedule: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Seed writes a validated document into the roster. Developers and weekly bounds
// are upserted; the month's policy, deploys and deploy schedules are replaced.
func (r *Repository) Seed(ctx context.Context, doc *input.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	month := doc.SchedulingPeriod.Month

	err := database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		for _, dev := range doc.Developers {
			level, _ := domain.ParseLevel(dev.Level)
			_, err := tx.ExecContext(ctx, `
				INSERT INTO developers (id, name, level, cost_per_hour, active, updated_at)
				VALUES (?, ?, ?, ?, 1, datetime('now'))
				ON CONFLICT(id) DO UPDATE SET
					name = excluded.name,
					level = excluded.level,
					cost_per_hour = excluded.cost_per_hour,
					active = 1,
					updated_at = excluded.updated_at
			`, *dev.DeveloperID, dev.Name, level.String(), *dev.CostPerHour)
			if err != nil {
				return fmt.Errorf("failed to upsert developer %d: %w", *dev.DeveloperID, err)
			}
		}

		for _, wc := range doc.WeeklyConstraints {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO weekly_constraints (developer_id, minimum_weekly_hours, maximum_weekly_hours)
				VALUES (?, ?, ?)
				ON CONFLICT(developer_id) DO UPDATE SET
					minimum_weekly_hours = excluded.minimum_weekly_hours,
					maximum_weekly_hours = excluded.maximum_weekly_hours
			`, *wc.DeveloperID, *wc.MinimumWeeklyHours, *wc.MaximumWeeklyHours)
			if err != nil {
				return fmt.Errorf("failed to upsert weekly constraint %d: %w", *wc.DeveloperID, err)
			}
		}

		var overtime interface{}
		if doc.ConstraintsRules.OvertimeRateMultiplier != nil {
			overtime = *doc.ConstraintsRules.OvertimeRateMultiplier
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO policies
				(month, on_call_rate_multiplier, overtime_rate_multiplier, minimum_mid_or_senior, weekend_required_headcount)
			VALUES (?, ?, ?, ?, ?)
		`, month,
			*doc.ConstraintsRules.OnCallRateMultiplier,
			overtime,
			*doc.ConstraintsRules.MinimumMidOrSeniorDuringActiveHours,
			*doc.AdditionalConstraints.WeekendRequiredHeadcount)
		if err != nil {
			return fmt.Errorf("failed to write policy: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM deploys WHERE month = ?`, month); err != nil {
			return fmt.Errorf("failed to clear deploys: %w", err)
		}
		for _, d := range doc.Deploys {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO deploys (month, deploy_date, deploy_time) VALUES (?, ?, ?)`,
				month, d.Date, d.Time); err != nil {
				return fmt.Errorf("failed to insert deploy: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM deploy_schedules WHERE month = ?`, month); err != nil {
			return fmt.Errorf("failed to clear deploy schedules: %w", err)
		}
		for _, s := range doc.DeploySchedules {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO deploy_schedules (month, cron, description) VALUES (?, ?, ?)`,
				month, s.Cron, s.Description); err != nil {
				return fmt.Errorf("failed to insert deploy schedule: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().
		Str("month", month).
		Int("developers", len(doc.Developers)).
		Int("deploys", len(doc.Deploys)).
		Msg("Roster seeded")
	return nil
}

// Deactivate hides a developer from future runs without deleting their history
func (r *Repository) Deactivate(ctx context.Context, developerID int) error {
	res, err := r.db.Conn().ExecContext(ctx, `UPDATE developers SET active = 0, updated_at = datetime('now') WHERE id = ?`, developerID)
	if err != nil {
		return fmt.Errorf("failed to deactivate developer %d: %w", developerID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", domain.ErrUnknownDeveloper, developerID)
	}
	return nil
}
