package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/generation"
	"github.com/ziadkadry99/umlgen/internal/pipeline"
	"github.com/ziadkadry99/umlgen/internal/progress"
	"github.com/ziadkadry99/umlgen/internal/render"
	"github.com/ziadkadry99/umlgen/internal/report"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

// errNoDiagram is returned when the model replied without a diagram.
var errNoDiagram = errors.New("no diagram found in the model reply; try rephrasing the description")

var generateCmd = &cobra.Command{
	Use:   "generate [description...]",
	Short: "Generate a UML diagram from a description",
	Long: `Sends the description to the configured model and prints the resulting
PlantUML markup and the image URL. The description is read from stdin when
no arguments are given. Exits with status 2 when the reply holds no diagram.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("type", "t", string(diagram.TypeClass), "diagram type (class, sequence, usecase, activity, component)")
	generateCmd.Flags().StringP("out", "o", "", "write the markup to this file instead of stdout")
	generateCmd.Flags().String("report", "", "write an HTML report to this file")
	generateCmd.Flags().String("export", "", "download the rendered SVG to this file")
	generateCmd.Flags().Bool("no-history", false, "do not record the attempt in the history database")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	typeFlag, _ := cmd.Flags().GetString("type")
	outPath, _ := cmd.Flags().GetString("out")
	reportPath, _ := cmd.Flags().GetString("report")
	exportPath, _ := cmd.Flags().GetString("export")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	t, err := parseType(typeFlag)
	if err != nil {
		return err
	}
	description, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	session, _, cleanup, err := newSession(cfg, !noHistory)
	if err != nil {
		return err
	}
	defer cleanup()

	unfollow := followStatus(session.Viewer(), progress.StatusSink(progress.NewReporter()))
	outcome, err := session.Generate(ctx, description, t)
	unfollow()
	if err != nil {
		if errors.Is(err, diagram.ErrEmptyDescription) {
			return err
		}
		var genErr *generation.Error
		if errors.As(err, &genErr) && verbose {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorLabel("Cause:"), genErr.Cause)
		}
		return fmt.Errorf("%s: %w", failureMessage, err)
	}
	if outcome.Absent() {
		return &exitError{code: 2, err: errNoDiagram}
	}

	text, _ := outcome.Markup.Text()
	if outPath != "" {
		if err := writeFile(outPath, text+"\n"); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s markup written to %s\n", successLabel("Done:"), outPath)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), text)
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", successLabel("URL:"), urlText(outcome.Encoded.URL))

	if reportPath != "" {
		if err := writeReport(session.Snapshot(), reportPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s report written to %s\n", successLabel("Done:"), reportPath)
	}
	if exportPath != "" {
		path, err := render.NewFetcher(nil, appLog).Download(ctx, outcome.Encoded.URL, exportPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s image saved to %s\n", successLabel("Done:"), path)
	}
	return nil
}

// failureMessage is the generic text shown when the model call fails.
const failureMessage = "Something went wrong/Out of credits"

// followStatus forwards viewer status changes to sink until the returned
// func is called.
func followStatus(v *viewer.Controller, sink generation.StatusSink) func() {
	last := v.State().Status
	return v.Subscribe(func(st viewer.State) {
		if st.Status == last {
			return
		}
		last = st.Status
		sink.SetStatus(st.Status)
	})
}

func writeReport(snap pipeline.Snapshot, path string) error {
	page, err := report.Page(report.Input{
		Description: snap.Description,
		Type:        snap.Type,
		Markup:      snap.Markup,
		Encoded:     snap.Encoded,
	})
	if err != nil {
		return err
	}
	return writeFile(path, page)
}
