// Package cli implements the authwatch command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/crimson-sun/authwatch/internal/config"
	"github.com/crimson-sun/authwatch/internal/logging"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// app carries state shared by the subcommands of one invocation.
type app struct {
	v   *viper.Viper
	cfg config.Config
}

// NewRootCmd builds the authwatch command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "authwatch",
		Short: "Watch the system journal for SSH and sudo security events",
		Long: `authwatch follows the system journal and raises an alert for every failed
SSH password, every accepted SSH login by a user outside the whitelist, and
every privileged sudo/root event. Alerts are appended to an audit log and
sent to the configured email, Telegram and Slack channels.

Configuration comes from the environment (MON_WHITELIST, SMTP_USER, SMTP_PASS,
ALERT_EMAIL_FROM, ALERT_EMAIL_TO, TG_TOKEN, TG_CHAT, SLACK_WEBHOOK, AUTHWATCH_*),
an optional YAML file, and the flags below.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromViper(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML configuration file")
	pf.String("connector", "", "log source: journal or stdin")
	pf.String("unit", "", "only follow this systemd unit")
	pf.String("audit-log", "", "audit log path")
	pf.String("log-level", "", "diagnostic log level: debug, info, warn, error")
	pf.String("log-format", "", "diagnostic log format: text or json")
	pf.Bool("json", false, "echo alerts to stdout as NDJSON")
	a.bind(pf.Lookup("config"), config.KeyConfigFile)
	a.bind(pf.Lookup("connector"), config.KeyConnector)
	a.bind(pf.Lookup("unit"), config.KeyUnit)
	a.bind(pf.Lookup("audit-log"), config.KeyAuditPath)
	a.bind(pf.Lookup("log-level"), config.KeyLogLevel)
	a.bind(pf.Lookup("log-format"), config.KeyLogFormat)
	a.bind(pf.Lookup("json"), config.KeyConsoleJSON)

	root.AddCommand(a.newRunCmd(), a.newScanCmd(), newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "authwatch %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
		},
	}
}

// bind makes flag f override key. An unset flag leaves the environment and
// file values in place.
func (a *app) bind(f *pflag.Flag, key string) {
	// BindPFlag only fails on a nil flag.
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
