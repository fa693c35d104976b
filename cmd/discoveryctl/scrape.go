package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/octobees/company-discovery/internal/dto"
	"github.com/octobees/company-discovery/internal/scraper"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>...",
	Short: "Scrape company websites",
	Long:  "Fetches and extracts each website. Nothing is stored unless --confirm is given; --replace overwrites records with the same canonical URL.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		flags := cmd.Flags()
		industry, _ := flags.GetString("industry")
		confirm, _ := flags.GetBool("confirm")
		replace, _ := flags.GetBool("replace")
		llm, _ := flags.GetBool("llm")

		a, pool, err := openApp(ctx)
		if err != nil {
			return eris.Wrap(err, "scrape: open")
		}
		defer pool.Close()

		result, err := a.Scraper.Scrape(ctx, scraper.Request{
			URLs:     args,
			Industry: industry,
			Confirm:  confirm,
			Replace:  replace,
			LLM:      llm,
		})
		if err != nil {
			return eris.Wrap(err, "scrape")
		}

		return writeJSON(cmd.OutOrStdout(), dto.ScrapeResponse{
			Companies:     result.Companies,
			Count:         result.Count,
			StoredCount:   result.StoredCount,
			ReplacedCount: result.ReplacedCount,
			SkippedCount:  result.SkippedCount,
		})
	},
}

func init() {
	f := scrapeCmd.Flags()
	f.String("industry", "", "industry hint for classification")
	f.Bool("confirm", false, "store the scraped companies")
	f.Bool("replace", false, "replace existing records with the same website")
	f.Bool("llm", false, "enrich weak records with the configured model")
	rootCmd.AddCommand(scrapeCmd)
}
