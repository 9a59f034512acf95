// Command plate is the platefinder terminal client. Run without arguments
// for the interactive UI; the search and filter subcommands run one-shot
// queries for scripting.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"platefinder/cmd/plate/app"
	"platefinder/cmd/plate/ui"
	"platefinder/internal/api"
	"platefinder/internal/config"
	"platefinder/internal/logging"
	"platefinder/internal/results"
	"platefinder/internal/search"
	"platefinder/internal/session"
)

const version = "1.0.0"

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "plate",
	Short: "platefinder - restaurant recommendations in your terminal",
	Long: `platefinder is a terminal client for the restaurant-recommendation
service: quick searches, guided filtering, and a personalized feed once
you log in.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(cfg.StateDir, level)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cfg, logger)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a quick search and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Run a guided filter query and print the results",
	RunE:  runFilter,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("platefinder %s\n", version)
	},
}

var (
	searchMaxDistance string

	filterLocation    string
	filterCuisines    []string
	filterDietary     []string
	filterOccasions   []string
	filterMaxPrice    string
	filterMaxDistance string
)

func newOneShotClient() (*api.Client, *session.Store, error) {
	store, err := session.NewStore(cfg.StateDir, logger.Named("session"))
	if err != nil {
		return nil, nil, err
	}
	return api.New(cfg.API.BaseURL, cfg.APITimeout(), store, logger.Named("api")), store, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, err := search.ValidateQuery(strings.Join(args, " "))
	if err != nil {
		return err
	}
	maxDistance, err := search.ParseMaxDistance(searchMaxDistance)
	if err != nil {
		return err
	}

	client, store, err := newOneShotClient()
	if err != nil {
		return err
	}

	payload, err := client.Suggest(cmd.Context(), api.SuggestQuery{
		Query:         query,
		MaxDistanceKm: maxDistance,
		DetectedCity:  store.DetectedCity(),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	records := results.New(logger.Named("normalize")).Normalize(payload)
	fmt.Println(ui.RenderCards(records, ui.PlainStyles()))
	return nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	maxPrice, err := search.ParseMaxPrice(filterMaxPrice)
	if err != nil {
		return err
	}
	maxDistance, err := search.ParseMaxDistance(filterMaxDistance)
	if err != nil {
		return err
	}
	filters := search.Filters{
		Location:       filterLocation,
		Cuisines:       filterCuisines,
		DietaryOptions: filterDietary,
		OccasionTags:   filterOccasions,
		MaxPrice:       maxPrice,
		MaxDistanceKm:  maxDistance,
	}
	if filters.IsEmpty() {
		return fmt.Errorf("no filters given; see --help for the available flags")
	}

	client, _, err := newOneShotClient()
	if err != nil {
		return err
	}

	payload, err := client.Filter(cmd.Context(), filters.Values())
	if err != nil {
		return fmt.Errorf("filter query failed: %w", err)
	}

	records := results.New(logger.Named("normalize")).Normalize(payload)
	fmt.Println(ui.RenderCards(records, ui.PlainStyles()))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.platefinder/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	searchCmd.Flags().StringVar(&searchMaxDistance, "max-distance", "", "maximum distance in km")

	filterCmd.Flags().StringVar(&filterLocation, "location", "", "filter by location")
	filterCmd.Flags().StringArrayVar(&filterCuisines, "cuisine", nil, "filter by cuisine (repeatable)")
	filterCmd.Flags().StringArrayVar(&filterDietary, "dietary", nil, "filter by dietary option (repeatable)")
	filterCmd.Flags().StringArrayVar(&filterOccasions, "occasion", nil, "filter by occasion (repeatable)")
	filterCmd.Flags().StringVar(&filterMaxPrice, "max-price", "", "maximum price")
	filterCmd.Flags().StringVar(&filterMaxDistance, "max-distance", "", "maximum distance in km")

	rootCmd.AddCommand(searchCmd, filterCmd, versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
