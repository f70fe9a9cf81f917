// Package main is the shiftplan command: it compiles a team configuration into a
// minimum-cost developer rota, solves it and publishes the rendered report.
//
// Exit codes: 0 schedule produced, 2 no optimal solution, 1 configuration or run error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/shiftplan/internal/config"
	"github.com/aristath/shiftplan/internal/database"
	"github.com/aristath/shiftplan/internal/domain"
	"github.com/aristath/shiftplan/internal/modules/input"
	"github.com/aristath/shiftplan/internal/modules/optimization"
	"github.com/aristath/shiftplan/internal/modules/report"
	"github.com/aristath/shiftplan/internal/modules/roster"
	"github.com/aristath/shiftplan/internal/modules/scheduling"
	"github.com/aristath/shiftplan/internal/reliability"
	"github.com/aristath/shiftplan/pkg/logger"
	"github.com/rs/zerolog"
)

const (
	exitProduced   = 0
	exitFailure    = 1
	exitNoSolution = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Error().Err(err).Msg("Failed to load configuration")
		return exitFailure
	}

	fs := flag.NewFlagSet("shiftplan", flag.ContinueOnError)
	fs.StringVar(&cfg.InputPath, "input", cfg.InputPath, "team configuration document (.json, .yaml)")
	fs.StringVar(&cfg.RosterDB, "roster-db", cfg.RosterDB, "read the team from this SQLite roster instead of -input")
	fs.StringVar(&cfg.RosterMonth, "month", cfg.RosterMonth, "month (YYYY-MM) to read from the roster")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "directory for rendered reports")
	fs.StringVar(&cfg.ReportFormat, "format", cfg.ReportFormat, "report format: pdf, text or both")
	fs.StringVar(&cfg.ProgramDump, "dump-program", cfg.ProgramDump, "write the compiled program as msgpack to this path")
	fs.BoolVar(&cfg.SeedRoster, "seed-roster", cfg.SeedRoster, "store -input into -roster-db and exit")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedRoster {
		if err := seedRoster(ctx, cfg, log); err != nil {
			log.Error().Err(err).Msg("Failed to seed roster")
			return exitFailure
		}
		return exitProduced
	}

	team, err := loadTeam(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Bool("configuration", domain.IsConfiguration(err)).Msg("Failed to load team")
		return exitFailure
	}

	solver := optimization.NewSimplexSolver(optimization.SolverLimits{
		MaxNodes:  cfg.SolverMaxNodes,
		TimeLimit: cfg.SolverTimeLimit,
	}, log)
	svc := scheduling.NewService(solver, log)

	model, err := svc.Compile(team)
	if err != nil {
		log.Error().Err(err).Bool("configuration", domain.IsConfiguration(err)).Msg("Failed to compile program")
		return exitFailure
	}
	if cfg.ProgramDump != "" {
		if err := dumpProgram(cfg.ProgramDump, model.Program); err != nil {
			log.Error().Err(err).Msg("Failed to dump program")
			return exitFailure
		}
		log.Info().Str("path", cfg.ProgramDump).Msg("Program written")
	}

	// a small host may still finish, so low headroom does not stop the run
	if _, err := reliability.NewHostProbe(log).CheckHeadroom(solver.EstimateMemory(model.Program)); err != nil {
		log.Warn().Err(err).Msg("Solving despite low memory headroom")
	}

	out, err := svc.RunModel(team, model)
	if err != nil {
		log.Error().Err(err).Msg("Scheduling run failed")
		return exitFailure
	}
	if !out.Produced() {
		log.Warn().
			Str("run_id", out.RunID).
			Str("status", out.Status.String()).
			Str("detail", out.Detail).
			Msg("No optimal solution")
		return exitNoSolution
	}

	locations, err := publish(ctx, cfg, team, out, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to publish report")
		return exitFailure
	}

	log.Info().
		Str("run_id", out.RunID).
		Float64("weekly_cost", out.Summary.TotalCost).
		Strs("reports", locations).
		Msg("Schedule produced")
	return exitProduced
}

func loadTeam(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*domain.Team, error) {
	var doc *input.Document
	if cfg.RosterDB != "" {
		db, err := database.New(database.Config{Path: cfg.RosterDB, Profile: database.ProfileReadOnly, Name: "roster"})
		if err != nil {
			return nil, err
		}
		defer db.Close()

		doc, err = roster.NewRepository(db, log).LoadDocument(ctx, cfg.RosterMonth)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		doc, err = input.Load(cfg.InputPath)
		if err != nil {
			return nil, err
		}
	}
	return doc.ToTeam(log)
}

func seedRoster(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.RosterDB == "" {
		return errors.New("-seed-roster needs -roster-db")
	}
	doc, err := input.Load(cfg.InputPath)
	if err != nil {
		return err
	}

	db, err := database.New(database.Config{Path: cfg.RosterDB, Profile: database.ProfileStandard, Name: "roster"})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}
	if err := roster.NewRepository(db, log).Seed(ctx, doc); err != nil {
		return err
	}
	log.Info().Str("roster", cfg.RosterDB).Str("input", cfg.InputPath).Msg("Roster seeded")
	return nil
}

func dumpProgram(path string, p *optimization.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := optimization.EncodeProgram(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func publish(ctx context.Context, cfg *config.Config, team *domain.Team, out *scheduling.Outcome, log zerolog.Logger) ([]string, error) {
	doc, err := report.NewDocument(team, out, time.Now())
	if err != nil {
		return nil, err
	}

	var renderers []report.Renderer
	if cfg.WantsPDF() {
		renderers = append(renderers, report.NewPDFRenderer())
	}
	if cfg.WantsText() {
		renderers = append(renderers, report.NewTextRenderer())
		if err := report.NewTextRenderer().Render(os.Stdout, doc); err != nil {
			return nil, err
		}
	}

	artifacts, err := report.Render(doc, renderers...)
	if err != nil {
		return nil, err
	}

	sinks := []report.Sink{report.NewFileSink(cfg.OutputDir, log)}
	if cfg.S3.Enabled() {
		s3Sink, err := report.NewS3Sink(ctx, cfg.S3, log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3Sink)
	}

	return report.Publish(ctx, artifacts, sinks...)
}
