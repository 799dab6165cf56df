package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicat/internal/app"
	"github.com/desertthunder/musicat/internal/formatter"
	"github.com/desertthunder/musicat/internal/repositories"
	"github.com/desertthunder/musicat/internal/services"
	"github.com/desertthunder/musicat/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader
	httpClient *http.Client
	store      app.Store
	db         *sql.DB
	app        *app.App
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config file on first use; a nil Store
// opens the SQLite state database named by the config.
type RunnerOpts struct {
	Config     *shared.Config
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	HTTPClient *http.Client
	Store      app.Store
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
		httpClient: opts.HTTPClient,
		store:      opts.Store,
	}
}

// SetLogger replaces the logger used by the runner and any app it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the state database when the runner opened one.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// loadConfig resolves configuration once: the --config file or embedded
// defaults, then .env and MUSICAT_* overrides, then --api-url.
func (r *Runner) loadConfig(cmd *cli.Command) error {
	if r.config != nil {
		return nil
	}

	config := shared.DefaultConfig()
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return err
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	config.ApplyEnv()
	if url := cmd.String("api-url"); url != "" {
		config.API.BaseURL = url
	}
	if err := config.Validate(); err != nil {
		return err
	}

	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Log.Level))
	r.config = config
	return nil
}

// connect builds the app on first use.
func (r *Runner) connect(cmd *cli.Command) (*app.App, error) {
	if r.app != nil {
		return r.app, nil
	}
	if err := r.loadConfig(cmd); err != nil {
		return nil, err
	}

	if r.store == nil {
		db, err := shared.OpenStateDatabase(r.config.State)
		if err != nil {
			return nil, fmt.Errorf("failed to open state database: %w", err)
		}
		r.db = db
		r.store = repositories.NewStateRepository(db)
	}

	client := services.NewClient(r.config.API.BaseURL, r.store,
		services.WithHTTPClient(r.httpClient),
		services.WithLogger(r.logger),
		services.WithRateLimit(r.config.API.RequestsPerSecond),
		services.WithUserAgent(r.config.API.UserAgent),
	)

	var confirmer app.Confirmer = app.ConfirmFunc(r.promptConfirm)
	if cmd.Bool("yes") {
		confirmer = app.AlwaysConfirm
	}

	r.app = app.New(client, r.store, app.Options{
		Locale:    r.config.UI.Locale,
		Logger:    r.logger,
		Notifier:  &cliNotifier{logger: r.logger, out: r.output, quiet: cmd.Bool("json")},
		Confirmer: confirmer,
	})
	return r.app, nil
}

// signedIn connects and fails fast, without a request, when no token is stored.
func (r *Runner) signedIn(ctx context.Context, cmd *cli.Command) (*app.App, error) {
	a, err := r.connect(cmd)
	if err != nil {
		return nil, err
	}
	token, err := a.Store.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return a, nil
}

// promptConfirm asks on the terminal. End of input declines.
func (r *Runner) promptConfirm(_ context.Context, prompt string) (bool, error) {
	fmt.Fprintf(r.output, "%s [y/N]: ", prompt)
	line, err := r.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (r *Runner) readLine() (string, error) {
	line, err := r.input.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// flagOrPrompt returns the flag value, asking for it when unset.
func (r *Runner) flagOrPrompt(cmd *cli.Command, name, label string) (string, error) {
	if v := cmd.String(name); v != "" {
		return v, nil
	}
	fmt.Fprintf(r.output, "%s: ", label)
	return r.readLine()
}

// cliNotifier logs failures, which the command also returns, and prints
// success messages unless stdout carries JSON.
type cliNotifier struct {
	logger *log.Logger
	out    io.Writer
	quiet  bool
}

func (n *cliNotifier) Notify(err error) {
	n.logger.Debug("notified", "error", err)
}

func (n *cliNotifier) Inform(msg string) {
	if n.quiet {
		n.logger.Info(msg)
		return
	}
	fmt.Fprintf(n.out, "✓ %s\n", msg)
}

func idArg(cmd *cli.Command, name string) (int, error) {
	raw := cmd.StringArg(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// optionalInt parses an optional numeric flag; unset or empty means nil.
func optionalInt(cmd *cli.Command, name string, parse func(string) (int, error)) (*int, error) {
	raw := strings.TrimSpace(cmd.String(name))
	if raw == "" {
		return nil, nil
	}
	n, err := parse(raw)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: --%s %q", shared.ErrInvalidArgument, name, raw)
	}
	return &n, nil
}

// resolveArtist accepts an artist id or name from the reference cache.
// A numeric input is tried as an id first.
func resolveArtist(a *app.App, input string) (int, error) {
	if id, err := strconv.Atoi(input); err == nil {
		if artist, ok := a.RefData.ArtistByID(id); ok {
			return artist.ID, nil
		}
	}
	if artist, ok := a.RefData.ArtistByName(input); ok {
		return artist.ID, nil
	}
	return 0, fmt.Errorf("%w: unknown artist %q", shared.ErrInvalidArgument, input)
}

// resolveGenre accepts a genre id or name from the reference cache.
// A numeric input is tried as an id first.
func resolveGenre(a *app.App, input string) (int, error) {
	if id, err := strconv.Atoi(input); err == nil {
		if genre, ok := a.RefData.GenreByID(id); ok {
			return genre.ID, nil
		}
	}
	if genre, ok := a.RefData.GenreByName(input); ok {
		return genre.ID, nil
	}
	return 0, fmt.Errorf("%w: unknown genre %q", shared.ErrInvalidArgument, input)
}

// writeListing prints a view table in the --format selected, or raw as JSON with --json.
func (r *Runner) writeListing(cmd *cli.Command, t app.Table, raw any) error {
	if cmd.Bool("json") {
		return r.writeJSON(raw, true)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	return formatter.Render(r.output, format, formatter.Listing{
		Title:   t.Title,
		Headers: t.Headers,
		Rows:    t.Lines(),
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
