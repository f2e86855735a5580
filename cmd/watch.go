package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/render"
	"github.com/ziadkadry99/umlgen/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <markup-file>",
	Short: "Print a fresh image URL every time a markup file is saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svgPath, _ := cmd.Flags().GetString("svg")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		w, err := watch.New(args[0], encoderEditor{plantuml.NewEncoder(cfg.Render.BaseURL)}, appLog)
		if err != nil {
			return err
		}
		fetcher := render.NewFetcher(nil, appLog)
		out := cmd.OutOrStdout()

		fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", w.Path())
		return w.Run(ctx, func(u watch.Update) {
			if u.Markup == "" {
				fmt.Fprintln(os.Stderr, warnLabel("No diagram available"))
				return
			}
			fmt.Fprintln(out, urlText(u.Encoded.URL))
			if svgPath == "" {
				return
			}
			if _, err := fetcher.Download(ctx, u.Encoded.URL, svgPath); err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorLabel("Render:"), err)
			}
		})
	},
}

func init() {
	watchCmd.Flags().String("svg", "", "also download the rendered SVG to this file on every change")
	rootCmd.AddCommand(watchCmd)
}

// encoderEditor applies edits by encoding them, with no session behind it.
type encoderEditor struct {
	enc *plantuml.Encoder
}

func (e encoderEditor) Edit(markup string) plantuml.Encoded {
	return e.enc.Encode(markup)
}
