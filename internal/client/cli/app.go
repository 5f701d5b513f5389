package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/studydeck/internal/client/config"
	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/studydeck/internal/client/services"
	"github.com/dmitrijs2005/studydeck/internal/client/store"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/logging"
	"github.com/spf13/cobra"
)

var errNoUser = errors.New("no local user, run `studydeck user set --id <id>` first")

// App holds everything a command needs. Fields below cfg are populated by
// setup before a command runs.
type App struct {
	args   []string
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	reader *bufio.Reader

	jsonOutput bool

	cfg         *config.Config
	logger      logging.Logger
	store       *store.Store
	repomanager repomanager.RepositoryManager
	users       *services.UserService
	lists       *services.ListService
	cards       *services.CardService
}

type Option func(*App)

func WithInput(r io.Reader) Option {
	return func(a *App) { a.in = r }
}

func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

func WithErrorOutput(w io.Writer) Option {
	return func(a *App) { a.errOut = w }
}

// NewApp prepares an App for one invocation with the given command line
// (without the program name).
func NewApp(args []string, opts ...Option) *App {
	a := &App{
		args:   args,
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the command line and releases the store afterwards.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(a.args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "studydeck",
		Short: "Study cards that work offline and sync when online",
		Long: `studydeck keeps lists of study cards in a local SQLite database and
reconciles them with the studydeck backend.

Every change is saved locally first. Changes made with --offline, or edits
to records the backend already has, are pushed by "studydeck sync".`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	// These flags are parsed by the config package; cobra only needs to
	// accept them and list them in help.
	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "path to a JSON or YAML config file")
	pf.String("db", "", "path to the local database")
	pf.String("api", "", "base URL of the backend API")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.BoolVar(&a.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		a.migrateCommand(),
		a.userCommand(),
		a.listCommand(),
		a.cardCommand(),
		a.syncCommand(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.args)
	if err != nil {
		return err
	}
	a.cfg = cfg

	lo := cfg.LoggingOptions()
	lo.Output = a.errOut
	a.logger = logging.New(lo)

	a.store = store.New(cfg.DatabasePath, store.WithLogger(a.logger))
	a.repomanager = repomanager.NewSQLiteRepositoryManager()

	so := []services.Option{services.WithLogger(a.logger)}
	a.users = services.NewUserService(a.store, a.repomanager, so...)
	a.lists = services.NewListService(a.store, a.repomanager, so...)
	a.cards = services.NewCardService(a.store, a.repomanager, so...)

	a.logger.Debug(cmd.Context(), "command started", "command", cmd.CommandPath(), "db", cfg.DatabasePath)
	return nil
}

func (a *App) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Release(); err != nil {
		a.logger.Warn(context.Background(), "release store", "err", err)
	}
}

func (a *App) currentUser(ctx context.Context) (*models.User, error) {
	u, err := a.users.First(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return nil, errNoUser
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	app := NewApp(args)
	if err := app.Run(ctx); err != nil {
		fmt.Fprintln(app.errOut, "error:", err)
		return 1
	}
	return 0
}
