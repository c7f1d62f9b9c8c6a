// ABOUTME: Root cobra command and shared runtime for every subcommand
// ABOUTME: Resolves config, builds the logger and metrics, and opens the workspace
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/harperreed/crmdesk/app"
	"github.com/harperreed/crmdesk/config"
	"github.com/harperreed/crmdesk/form"
	"github.com/harperreed/crmdesk/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runtime holds the global flags and what was built from them.
type runtime struct {
	configFile string
	envFile    string
	backend    string
	dbPath     string
	logLevel   string

	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
}

// load resolves configuration once, letting explicit flags win.
func (r *runtime) load(cmd *cobra.Command) error {
	if r.cfg != nil {
		return nil
	}
	cfg, err := config.Load(config.Options{ConfigFile: r.configFile, EnvFile: r.envFile})
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = strings.ToLower(r.backend)
	}
	if flags.Changed("db-path") {
		cfg.DBPath = r.dbPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = r.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	r.cfg = cfg
	r.logger = logger
	r.metrics = observability.NewMetrics()
	return nil
}

// open builds a workspace whose notifications go to the command's output.
func (r *runtime) open(cmd *cobra.Command) (*app.Workspace, error) {
	return r.openWith(cmd, printNotifier(cmd.OutOrStdout(), cmd.ErrOrStderr()))
}

func (r *runtime) openWith(cmd *cobra.Command, notifier form.Notifier) (*app.Workspace, error) {
	if err := r.load(cmd); err != nil {
		return nil, err
	}
	return app.Open(r.cfg, app.Options{Logger: r.logger, Metrics: r.metrics, Notifier: notifier})
}

func (r *runtime) sync() {
	if r.logger != nil {
		_ = r.logger.Sync()
	}
}

// printNotifier writes successes to out and everything else to errOut.
func printNotifier(out, errOut io.Writer) form.Notifier {
	return form.NotifierFunc(func(level form.Level, msg string) {
		switch level {
		case form.LevelSuccess:
			fmt.Fprintln(out, msg)
		case form.LevelWarning:
			fmt.Fprintln(errOut, "warning: "+msg)
		default:
			fmt.Fprintln(errOut, "error: "+msg)
		}
	})
}

// NewRootCmd assembles the command tree.
func NewRootCmd(version string) *cobra.Command {
	rt := &runtime{}
	cmd := &cobra.Command{
		Use:   "crmdesk",
		Short: "Small-business CRM: contacts, companies, deals, leads, tasks and sales reps",
		Long: `crmdesk manages CRM records stored in a hosted Apper project, or in a local
SQLite database when no project credentials are configured.

Entities: contacts, companies, deals, leads, tasks, salesreps.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			rt.sync()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&rt.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/crmdesk/config.yaml)")
	pf.StringVar(&rt.envFile, "env-file", "", "dotenv file to load (default is .env)")
	pf.StringVar(&rt.backend, "backend", "", "record backend: auto, remote, sqlite or memory")
	pf.StringVar(&rt.dbPath, "db-path", "", "SQLite database path for the sqlite backend")
	pf.StringVar(&rt.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newListCmd(rt),
		newShowCmd(rt),
		newFieldsCmd(rt),
		newAddCmd(rt),
		newUpdateCmd(rt),
		newDeleteCmd(rt),
		newExportCmd(rt),
		newTUICmd(rt),
		newServeCmd(rt),
		newBackendCmd(rt),
		newMCPCmd(rt, version),
	)
	return cmd
}

// Execute runs the CLI and returns the first error.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}
