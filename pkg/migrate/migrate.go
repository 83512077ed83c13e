package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// Command is a goose operation that needs a live postgres connection.
type Command string

const (
	CommandUp     Command = "up"
	CommandDown   Command = "down"
	CommandStatus Command = "status"
)

// Step reports a single applied or inspected migration.
type Step struct {
	Version   int64
	Path      string
	Direction string
	Applied   bool
}

// Runner applies the SQL migrations in a directory against postgres.
type Runner struct {
	provider *goose.Provider
}

// NewRunner builds a goose provider over dir. sqlite databases use AutoMigrate instead.
func NewRunner(db *sql.DB, dir string) (*Runner, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if dir == "" {
		return nil, errors.New("dir is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("goose provider for %q: %w", dir, err)
	}
	return &Runner{provider: provider}, nil
}

// Run executes cmd and returns the migrations it touched.
func (r *Runner) Run(ctx context.Context, cmd Command) ([]Step, error) {
	switch cmd {
	case CommandUp:
		results, err := r.provider.Up(ctx)
		if err != nil {
			return nil, fmt.Errorf("goose up: %w", err)
		}
		return stepsFromResults(results), nil
	case CommandDown:
		result, err := r.provider.Down(ctx)
		if err != nil {
			return nil, fmt.Errorf("goose down: %w", err)
		}
		return stepsFromResults([]*goose.MigrationResult{result}), nil
	case CommandStatus:
		statuses, err := r.provider.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("goose status: %w", err)
		}
		steps := make([]Step, 0, len(statuses))
		for _, st := range statuses {
			if st == nil || st.Source == nil {
				continue
			}
			steps = append(steps, Step{
				Version:   st.Source.Version,
				Path:      st.Source.Path,
				Direction: "status",
				Applied:   st.State == goose.StateApplied,
			})
		}
		return steps, nil
	default:
		return nil, fmt.Errorf("unknown migrate command %q", cmd)
	}
}

// MigrateTo moves the schema up or down until it sits at target (YYYYMMDDHHMMSS).
func (r *Runner) MigrateTo(ctx context.Context, target string) ([]Step, error) {
	version, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", target, err)
	}

	current, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == version:
		return nil, nil
	case current < version:
		results, err = r.provider.UpTo(ctx, version)
	default:
		results, err = r.provider.DownTo(ctx, version)
	}
	if err != nil {
		return nil, fmt.Errorf("goose migrate %d -> %d: %w", current, version, err)
	}
	return stepsFromResults(results), nil
}

func stepsFromResults(results []*goose.MigrationResult) []Step {
	steps := make([]Step, 0, len(results))
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		steps = append(steps, Step{
			Version:   res.Source.Version,
			Path:      res.Source.Path,
			Direction: res.Direction,
			Applied:   res.Direction == "up",
		})
	}
	return steps
}
