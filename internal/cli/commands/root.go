package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kamy/api/internal/cli/api"
	"github.com/kamy/api/internal/cli/config"
	"github.com/kamy/api/internal/cli/output"
	"github.com/spf13/cobra"
)

// Version is the CLI version, injected at build time:
//
//	go build -ldflags "-X github.com/kamy/api/internal/cli/commands.Version=1.2.3"
var Version = "dev"

var errNotAuthenticated = errors.New("not authenticated, run \"kamy login\" first")

// app is the state shared by every subcommand of one invocation.
type app struct {
	jsonOutput bool
	serverURL  string

	store  *config.Store
	cfg    *config.Config
	client *api.Client
	in     io.Reader
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "kamy",
		Short: "Kamy CLI: shared groups, tasks and notifications from the terminal",
		Long: `Kamy CLI talks to a Kamy server to manage your groups, tasks and
notifications.

Get started:
  kamy register --name "Ada" --email ada@example.com
  kamy login --email ada@example.com
  kamy groups list
  kamy tasks mine`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			output.Writer = cmd.OutOrStdout()
			a.in = cmd.InOrStdin()

			store, err := config.Open()
			if err != nil {
				return err
			}
			cfg, err := store.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			a.store = store
			if a.serverURL != "" {
				cfg.ServerURL = a.serverURL
			}
			a.cfg = cfg
			a.client = api.NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output as JSON")
	root.PersistentFlags().StringVar(&a.serverURL, "server", "", "Override server URL (default: from config or "+config.DefaultURL+")")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.versionCmd(),
		a.groupsCmd(),
		a.tasksCmd(),
		a.notificationsCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) requireAuth() error {
	if a.cfg == nil || !a.cfg.HasToken() {
		return errNotAuthenticated
	}
	return nil
}

// authed wraps a RunE that needs a stored token and turns 401s into a login
// hint.
func (a *app) authed(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.requireAuth(); err != nil {
			return err
		}
		err := run(cmd, args)
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return fmt.Errorf("session expired or invalid, run \"kamy login\" again: %w", err)
		}
		return err
	}
}

// print renders v as JSON with --json, otherwise through human.
func (a *app) print(v interface{}, human func()) {
	if a.jsonOutput {
		output.JSON(v)
		return
	}
	human()
}
