package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"partsmcp/internal/config"
)

func newConfigCmd(g *GlobalFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write .partsmcp.yaml with defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, g, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print effective config as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigPrint(cmd, g)
		},
	}

	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(printCmd)
	return configCmd
}

func runConfigInit(cmd *cobra.Command, g *GlobalFlags, force bool) error {
	configPath := g.ConfigPath
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(config.DefaultYAML), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Wrote", configPath)
	fmt.Fprintln(out, "Set catalog.path in the file or "+config.EnvCatalogPath+" in your environment.")
	return nil
}

func runConfigPrint(cmd *cobra.Command, g *GlobalFlags) error {
	cfg, err := config.Load(config.Options{
		ConfigPath:   g.ConfigPath,
		SkipValidate: true, // print even when the catalog path is not set
		Overrides:    g.overrides(cmd),
	})
	if err != nil {
		return withExitCode(ExitConfigInvalid, err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
