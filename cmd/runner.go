package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/api"
	"github.com/desertthunder/scx/internal/auth"
	"github.com/desertthunder/scx/internal/favorites"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	session *auth.Session
	store   auth.TokenStore
	api     *api.Client
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Session *auth.Session
	Store   auth.TokenStore
	API     *api.Client
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		session: opts.Session,
		store:   opts.Store,
		api:     opts.API,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, tracksCommand, usersCommand, downloadCommand, favoritesCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// apiErr applies pipeline error policy: an unauthorized response purges the
// session credential before the error propagates to the user.
func (r *Runner) apiErr(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		r.session.HandleUnauthorized()
	}
	return err
}

// openFavorites opens the configured database and returns a favorites
// repository. The caller closes the returned handle.
func (r *Runner) openFavorites() (*favorites.Repository, *sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return favorites.NewRepository(db), db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	_, err = fmt.Fprintln(r.output, string(output))
	return err
}

func (r *Runner) writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(r.output, format, args...)
	return err
}

func (r *Runner) writePlainln(format string, args ...any) error {
	_, err := fmt.Fprintf(r.output, format+"\n", args...)
	return err
}
