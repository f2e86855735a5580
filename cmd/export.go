package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/render"
)

var exportCmd = &cobra.Command{
	Use:   "export [markup-file]",
	Short: "Render markup on the PlantUML server and save the SVG",
	Long: `Encodes the markup (from a file or stdin), fetches the rendered image
and saves it. The file name defaults to uml.svg.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")

		markup, err := readMarkup(cmd, args)
		if err != nil {
			return err
		}
		markup = strings.TrimSpace(markup)
		if markup == "" {
			return errors.New("No diagram available")
		}

		enc := plantuml.NewEncoder(cfg.Render.BaseURL).Encode(markup)
		path, err := render.NewFetcher(nil, appLog).Download(context.Background(), enc.URL, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s saved %s\n", successLabel("Done:"), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", render.DefaultFileName, "output file")
	rootCmd.AddCommand(exportCmd)
}
