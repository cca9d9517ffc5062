package command

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/adamavenir/imsgexport/internal/core"
)

const AppName = "imsgexport"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// app carries state resolved once per invocation.
type app struct {
	cfg *core.Config
}

func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   AppName + " --input <chat.db> --output <dir>",
		Short: "Export iMessage/SMS conversations to JSON",
		Long: "imsgexport reads a message store database and writes one JSON document per\n" +
			"conversation, merging chats that share the same participants, and copies\n" +
			"attachments next to them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, a)
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("config", "", "path to a TOML config file")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.PersistentFlags().Bool("force", false, "force action (skip confirmations)")

	cmd.Flags().StringP("input", "i", "", "path to the message database (chat.db)")
	cmd.Flags().StringP("output", "o", "", "directory to write the export into")
	cmd.Flags().Bool("html", false, "also render each conversation as HTML")
	cmd.Flags().Bool("sort", false, "sort messages chronologically within each conversation")
	cmd.Flags().StringArray("participant", nil, "only export conversations with a matching participant (glob, repeatable)")

	cmd.AddCommand(NewThreadsCmd(a))

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}

// setup loads configuration and configures logging before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := core.LoadConfig(configPath)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if err := configureLogging(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return writeCommandError(cmd, err)
	}
	a.cfg = cfg
	return nil
}
