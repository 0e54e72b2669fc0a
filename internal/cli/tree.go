package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ontolens/internal/pipeline"
	"github.com/ppiankov/ontolens/internal/worker"
)

var (
	treeFlags runFlags
	treeDepth int
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree <endpoint-url|file>",
	Short: "Print the concept hierarchy",
	Long: `Tree prints the hierarchy as an indented outline. Each concept is followed
by (children, indirect descendants). Concepts with several parents are
expanded once.

Example:
  ontolens tree zoo.yaml
  ontolens tree https://dbpedia.org/sparql --depth 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := treeFlags.apply(cmd, cfg); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), treeFlags.timeout)
		defer cancel()

		p := pipeline.NewPipeline(cfg, pipeline.WithRateLimiter(worker.NewLimiterFromConfig(cfg.RateLimiting)))
		tree, err := p.Tree(ctx, args[0])
		if err != nil {
			return fmt.Errorf("tree failed: %w", err)
		}

		r := p.Renderer()
		r.SetOutput(cmd.OutOrStdout())
		r.RenderTree(tree, treeDepth)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeFlags.register(treeCmd.Flags())
	treeCmd.Flags().IntVar(&treeDepth, "depth", 0, "maximum depth to print (0 prints everything)")
}
