package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"partsmcp/internal/config"
)

// Exit codes
const (
	ExitSuccess            = 0
	ExitGenericError       = 1
	ExitConfigInvalid      = 2
	ExitBindFailure        = 4
	ExitCatalogOpenFailure = 5
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	g := &GlobalFlags{}
	root := &cobra.Command{
		Use:           "partsmcp",
		Short:         "MCP tool server for the JLCPCB parts catalog",
		Long:          "partsmcp serves a read-only jlcparts SQLite catalog (categories, manufacturers, parts) as MCP tools.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.ConfigPath, "config", config.DefaultConfigFile, "config file path (.yaml or .toml)")
	root.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&g.LogFormat, "log-format", "", "log format: json|console")

	root.AddCommand(newServeCmd(g))
	root.AddCommand(newConfigCmd(g))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command. Map the returned error to a process exit
// status with ExitCode.
func Execute() error {
	return NewRootCmd().Execute()
}

// overrides maps the global flags that were set onto config overrides.
func (g *GlobalFlags) overrides(cmd *cobra.Command) *config.Overrides {
	o := &config.Overrides{}
	if cmd.Flags().Changed("log-level") {
		o.LogLevel = &g.LogLevel
	}
	if cmd.Flags().Changed("log-format") {
		o.LogFormat = &g.LogFormat
	}
	return o
}

// exitError carries a process exit status out of a command so deferred
// cleanup runs before the process ends.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// ExitCode returns the process exit status for an error from Execute.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return ExitGenericError
}
