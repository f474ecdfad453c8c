package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/detektlint/internal/config"
	"github.com/lucasnoah/detektlint/internal/logging"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

// logger is configured from the global flags before any command runs.
var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "detektlint",
	Short: "detektlint — run detekt and report normalized lint findings",
	Long: `detektlint runs the detekt Kotlin linter (java -jar detekt-cli.jar) against
source files and turns its reports into normalized findings with a path,
line, column, severity and rule name.

The jar and rules config are read from .detektlint.yaml in the project root.
Run history is kept in ~/.detektlint/detektlint.db unless a database is configured.`,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		l, err := logging.New(cmd.ErrOrStderr(), level, format)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "f", "", "path to .detektlint.yaml (default: search project root, cwd, ~/.detektlint)")
	rootCmd.PersistentFlags().String("root", "", "project root used to resolve relative paths (default: current directory)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "auto", "log format: auto, text, json")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dbCmd)
}

// projectRoot returns the --root flag as an absolute path, or the working directory.
func projectRoot(cmd *cobra.Command) (string, error) {
	root, _ := cmd.Flags().GetString("root")
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("resolve root %s: %w", root, err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return wd, nil
}

func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	if file, _ := cmd.Flags().GetString("config"); file != "" {
		return config.Load(file)
	}
	return config.LoadDefault(root)
}
