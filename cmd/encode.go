package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/umlgen/internal/extract"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [markup-file]",
	Short: "Encode PlantUML markup into a server token and image URL",
	Long: `Encodes markup read from a file, or from stdin when no file is given.
A fenced model reply is accepted too: the plantuml block is extracted first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		input, err := readMarkup(cmd, args)
		if err != nil {
			return err
		}
		if text, ok := extract.Extract(input).Text(); ok {
			input = text
		}
		enc := plantuml.NewEncoder(cfg.Render.BaseURL).Encode(strings.TrimSpace(input))

		tokenOnly, _ := cmd.Flags().GetBool("token")
		if tokenOnly {
			fmt.Fprintln(cmd.OutOrStdout(), enc.Token)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), enc.URL)
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode <token-or-url>",
	Short: "Decode a PlantUML server token back into markup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := args[0]
		if i := strings.LastIndex(token, "/"); i >= 0 {
			token = token[i+1:]
		}
		markup, err := plantuml.Decode(token)
		if err != nil {
			return fmt.Errorf("decoding token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), markup)
		return nil
	},
}

func init() {
	encodeCmd.Flags().Bool("token", false, "print only the token")
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
}

func readMarkup(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return readFile(args[0])
	}
	return readInput(nil, cmd.InOrStdin())
}
