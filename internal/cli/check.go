package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ontolens/internal/source"
	"github.com/ppiankov/ontolens/internal/util"
	"github.com/ppiankov/ontolens/internal/validate"
	"github.com/ppiankov/ontolens/internal/worker"
)

var (
	checkFlags   runFlags
	checkJSON    bool
	checkWorkers int
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <endpoint-url>...",
	Short: "Check that SPARQL endpoints can be queried",
	Long: `Check sends a class-count query to each endpoint and reports whether it
answered, how many classes it declares and how long it took. Public
endpoints are checked against robots.txt first.

Example:
  ontolens check https://dbpedia.org/sparql http://localhost:3030/zoo/sparql
  ontolens check https://dbpedia.org/sparql --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := checkFlags.apply(cmd, cfg); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), checkFlags.timeout)
		defer cancel()

		var robots source.RobotsPolicy
		if cfg.HTTP.RespectRobots {
			robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, source.NewHTTPClient(cfg.HTTP))
		}
		v := validate.NewValidator(cfg.HTTP, checkWorkers, worker.NewLimiterFromConfig(cfg.RateLimiting), robots)
		statuses := v.Validate(ctx, args)

		out := cmd.OutOrStdout()
		if checkJSON {
			data, err := json.MarshalIndent(statuses, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal statuses: %w", err)
			}
			fmt.Fprintln(out, string(data))
		} else {
			for _, s := range statuses {
				if s.Reachable && s.Error == "" {
					fmt.Fprintf(out, "✓ %s [%s] %d classes in %s\n", s.Endpoint, s.Tier, s.Classes, s.Latency.Round(time.Millisecond))
					continue
				}
				fmt.Fprintf(out, "✗ %s [%s] %s\n", s.Endpoint, s.Tier, s.Error)
			}
		}

		if !validate.Healthy(statuses) {
			return fmt.Errorf("one or more endpoints are not reachable")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkFlags.register(checkCmd.Flags())
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print statuses as JSON")
	checkCmd.Flags().IntVar(&checkWorkers, "concurrency", 4, "number of endpoints probed at once")
}
