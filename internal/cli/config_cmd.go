package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lucasnoah/detektlint/internal/config"
	"github.com/lucasnoah/detektlint/internal/runner"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate and inspect detektlint configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file and resolve the jar and rules config",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, root)
		if err != nil {
			return err
		}

		errs := config.Validate(cfg)
		if len(errs) > 0 {
			cmd.Println("Validation errors:")
			for _, e := range errs {
				cmd.Printf("  - %s\n", e)
			}
			cmd.SilenceUsage = true
			return fmt.Errorf("config has %d validation error(s)", len(errs))
		}

		if _, err := config.ResolveLinter(cfg, root, logger); err != nil {
			cmd.SilenceUsage = true
			return err
		}
		cmd.Println("Configuration is valid.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configuration with defaults merged and the detekt command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, root)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshalling config: %w", err)
		}
		cmd.Print(string(data))

		resolved, err := config.ResolveLinter(cfg, root, logger)
		if err != nil {
			cmd.SilenceUsage = true
			return err
		}
		linter, err := runner.NewLinter(newCommandRunner(), resolved, root, logger)
		if err != nil {
			return err
		}

		outDir := resolved.OutputDir
		if outDir == "" {
			outDir = "<tmp>"
		}
		argv := append([]string{resolved.Binary}, linter.Args(outDir, resolved.ReportBaseName+"-<id>")...)
		cmd.Printf("\ncommand: %s <path>\n", strings.Join(argv, " "))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
