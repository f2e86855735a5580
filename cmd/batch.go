package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/umlgen/internal/progress"
)

var batchCmd = &cobra.Command{
	Use:   "batch [glob]",
	Short: "Generate diagrams for every description file matching a glob",
	Long: `Reads each file matching the glob (for example "docs/**/*.txt") as a
description and writes the generated markup next to it with a .puml
extension. Files are processed one at a time. The glob may be given with
--glob or as the only argument.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringP("glob", "g", "", "doublestar glob of description files")
	batchCmd.Flags().StringP("type", "t", "class", "diagram type for every file")
	batchCmd.Flags().String("out-dir", "", "write .puml files here instead of next to their descriptions")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	typeFlag, _ := cmd.Flags().GetString("type")
	outDir, _ := cmd.Flags().GetString("out-dir")
	pattern, _ := cmd.Flags().GetString("glob")
	if len(args) == 1 {
		pattern = args[0]
	}
	if pattern == "" {
		return fmt.Errorf("a glob is required, e.g. --glob 'stories/**/*.txt'")
	}
	t, err := parseType(typeFlag)
	if err != nil {
		return err
	}

	files, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("invalid glob %q: %w", pattern, err)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No description files matched.")
		return nil
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", outDir, err)
		}
	}

	session, _, cleanup, err := newSession(cfg, true)
	if err != nil {
		return err
	}
	defer cleanup()

	reporter := progress.NewReporter()
	reporter.Start(len(files))

	var written, absent, failed int
	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		reporter.Update(i+1, filepath.Base(file))

		data, err := os.ReadFile(file)
		if err != nil {
			appLog.Error(err, "reading description")
			failed++
			continue
		}
		outcome, err := session.Generate(ctx, string(data), t)
		if err != nil {
			appLog.WithFields(map[string]any{"file": file}).Error(err, "generation failed")
			failed++
			continue
		}
		text, ok := outcome.Markup.Text()
		if !ok {
			absent++
			continue
		}
		if err := writeFile(pumlPath(file, outDir), text+"\n"); err != nil {
			return err
		}
		written++
	}
	reporter.Finish()

	fmt.Fprintf(os.Stderr, "%s %d written, %d without a diagram, %d failed\n", successLabel("Batch:"), written, absent, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d descriptions failed", failed, len(files))
	}
	return nil
}

// pumlPath swaps the extension of file for .puml, optionally moving it
// into dir.
func pumlPath(file, dir string) string {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".puml"
	if dir == "" {
		dir = filepath.Dir(file)
	}
	return filepath.Join(dir, name)
}
