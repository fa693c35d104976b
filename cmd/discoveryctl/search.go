package main

import (
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/octobees/company-discovery/internal/dto"
	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the company directory",
	Long:  "Runs the same search as GET /companies, including the external source fallback. Contacts are shown as an anonymous caller would see them.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		req, err := searchRequestFromFlags(cmd, args)
		if err != nil {
			return err
		}

		a, pool, err := openApp(ctx)
		if err != nil {
			return eris.Wrap(err, "search: open")
		}
		defer pool.Close()

		result, err := a.Search.Search(ctx, req)
		if err != nil {
			return eris.Wrap(err, "search")
		}

		return writeJSON(cmd.OutOrStdout(), dto.SearchResponse{
			Companies: a.Access.Apply(ctx, nil, result.Companies),
			Count:     result.Count,
			HasMore:   result.HasMore,
			Page:      result.Page,
			PageSize:  result.PageSize,
		})
	},
}

func searchRequestFromFlags(cmd *cobra.Command, args []string) (service.SearchRequest, error) {
	flags := cmd.Flags()
	industry, _ := flags.GetString("industry")
	location, _ := flags.GetString("location")
	placeID, _ := flags.GetString("place-id")
	size, _ := flags.GetString("size")
	verified, _ := flags.GetString("verified")
	dataSources, _ := flags.GetStringSlice("sources")
	page, _ := flags.GetInt("page")
	pageSize, _ := flags.GetInt("page-size")

	req := service.SearchRequest{
		Page:     page,
		PageSize: pageSize,
		Filters: service.Filters{
			Industry:        industry,
			Location:        location,
			LocationPlaceID: placeID,
			CompanySize:     entity.CompanySize(strings.ToLower(size)),
			DataSources:     dataSources,
		},
	}
	if len(args) > 0 {
		req.Query = args[0]
	}
	if verified != "" {
		v, err := strconv.ParseBool(verified)
		if err != nil {
			return service.SearchRequest{}, eris.Errorf("invalid --verified value %q", verified)
		}
		req.Filters.Verified = &v
	}
	return req, nil
}

func init() {
	f := searchCmd.Flags()
	f.String("industry", "", "industry filter, \"all\" for none")
	f.String("location", "", "location filter (country, city or region)")
	f.String("place-id", "", "Google place id of the location, biases the Google Places fallback")
	f.String("size", "", "company size: small, medium or large")
	f.String("verified", "", "only verified (true) or unverified (false) companies")
	f.StringSlice("sources", nil, "data sources used by the external fallback")
	f.Int("page", 1, "result page")
	f.Int("page-size", 20, "results per page")
	rootCmd.AddCommand(searchCmd)
}
