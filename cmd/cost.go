package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/umlgen/internal/llm"
	"github.com/ziadkadry99/umlgen/internal/prompt"
)

var costCmd = &cobra.Command{
	Use:   "cost [description...]",
	Short: "Estimate the API cost of generating a diagram",
	Long: `Composes the prompt for the description without calling the model and
estimates input tokens, the worst-case output tokens and the resulting cost.`,
	RunE: runCost,
}

func init() {
	costCmd.Flags().StringP("type", "t", "class", "diagram type")
	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	typeFlag, _ := cmd.Flags().GetString("type")
	t, err := parseType(typeFlag)
	if err != nil {
		return err
	}
	description, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	store, err := loadTemplates(cfg)
	if err != nil {
		return err
	}

	promptText := prompt.Compose(description, t, store)
	inputTokens := llm.EstimateTokens(promptText)
	outputTokens := cfg.MaxTokens
	if outputTokens <= 0 {
		outputTokens = 4096
	}
	cost := llm.EstimateCost(cfg.Model, inputTokens, outputTokens)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Provider:       %s\n", cfg.Provider)
	fmt.Fprintf(out, "Model:          %s\n", cfg.Model)
	fmt.Fprintf(out, "Diagram type:   %s\n", t)
	fmt.Fprintf(out, "Input tokens:   ~%d\n", inputTokens)
	fmt.Fprintf(out, "Output tokens:  <= %d\n", outputTokens)
	if cost == 0 {
		fmt.Fprintln(out, "Estimated cost: free or unknown model pricing")
	} else {
		fmt.Fprintf(out, "Estimated cost: <= $%.4f\n", cost)
	}
	return nil
}
