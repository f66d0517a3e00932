package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/model"
)

var (
	generateGeography   string
	generateCompanySize string
	generateJSON        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <icp-description>",
	Short: "Generate leads and outreach drafts for an ICP",
	Long:  "Runs the full pipeline once: normalizes the ICP description, sources and scores leads, and writes a personalized email draft for each.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		resp, err := env.Pipeline.Run(ctx, model.GenerateRequest{
			ICPDescription: args[0],
			Geography:      generateGeography,
			CompanySize:    generateCompanySize,
		})
		if err != nil {
			return eris.Wrap(err, "generate")
		}

		if generateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		printLeads(os.Stdout, resp)
		return nil
	},
}

func printLeads(w *os.File, resp *model.GenerateResponse) {
	fmt.Fprintf(w, "Source: %s\n\n", resp.Source)
	for i, lead := range resp.Leads {
		fmt.Fprintf(w, "%d. %s, %s at %s (fit %d/100)\n", i+1, lead.Name, lead.Title, lead.Company, lead.FitScore)
		fmt.Fprintf(w, "   Why: %s\n", lead.FitExplanation)
		fmt.Fprintf(w, "   Subject: %s\n", lead.PersonalizedEmail.Subject)
		fmt.Fprintf(w, "   %s\n\n", lead.PersonalizedEmail.Body)
	}
}

func init() {
	generateCmd.Flags().StringVar(&generateGeography, "geography", "", "geography hint (e.g. US, EU)")
	generateCmd.Flags().StringVar(&generateCompanySize, "company-size", "", "company size hint (e.g. 100-500)")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "emit JSON instead of formatted text")
	rootCmd.AddCommand(generateCmd)
}
