package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates [type]",
	Short: "Show the example diagrams included in every prompt",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := loadTemplates(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			fmt.Fprintln(out, store.JSON())
			return nil
		}
		if len(args) == 1 {
			t, err := parseType(args[0])
			if err != nil {
				return err
			}
			text, ok := store.Get(t)
			if !ok {
				return fmt.Errorf("no template for %s", t)
			}
			fmt.Fprintln(out, text)
			return nil
		}
		for _, t := range store.Types() {
			text, _ := store.Get(t)
			fmt.Fprintf(out, "%s\n%s\n\n", successLabel(string(t)+":"), text)
		}
		return nil
	},
}

func init() {
	templatesCmd.Flags().Bool("json", false, "print the templates as the JSON object sent to the model")
	rootCmd.AddCommand(templatesCmd)
}
