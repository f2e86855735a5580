package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/umlgen/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize umlgen configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to pick a provider and model and writes a .umlgen.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s wrote %s\n", successLabel("Done:"), cfgFile)
		if env := config.APIKeyEnvVar(cfg.Provider); env != "" && os.Getenv(env) == "" {
			fmt.Fprintf(os.Stderr, "%s set %s in your environment or in %s\n", warnLabel("Next:"), env, envFile)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
