// Package cmd implements the commutemap command line.
package cmd

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/commutemap/config"
	"github.com/zalepa/commutemap/dataset"
	"github.com/zalepa/commutemap/fetch"
	"github.com/zalepa/commutemap/render"
)

var cfg *config.Config

// runID tags every log line of one invocation.
var runID string

var (
	flagBoundaries string
	flagTravel     string
	flagDesignated string
	flagPalette    string
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "commutemap",
	Short: "Calgary commuting-mode choropleth maps",
	Long: `Joins Calgary community boundaries with the civic census "Modes of Travel"
table, classifies each community by its dominant travel mode or by its share
of a designated mode, and renders maps, charts, reports and a dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		applyOverrides(cmd, c)
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		runID = uuid.NewString()
		zap.ReplaceGlobals(zap.L().With(zap.String("run_id", runID)))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagBoundaries, "boundaries", "", "boundary GeoJSON or shapefile path/URL (default from config)")
	pf.StringVar(&flagTravel, "travel", "", "Modes of Travel CSV path/URL (default from config)")
	pf.StringVar(&flagDesignated, "designated", "", "category used for percentage shares (default from config)")
	pf.StringVar(&flagPalette, "palette", "", "YAML palette override file")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// applyOverrides copies explicitly set persistent flags over c.
func applyOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("boundaries") {
		c.Data.Boundaries = flagBoundaries
	}
	if flags.Changed("travel") {
		c.Data.Travel = flagTravel
	}
	if flags.Changed("designated") {
		c.Render.Designated = flagDesignated
	}
	if flags.Changed("palette") {
		c.Render.Palette = flagPalette
	}
	if flags.Changed("log-level") {
		c.Log.Level = flagLogLevel
	}
}

// loadDataset fetches and joins both configured datasets.
func loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	cats, err := cfg.CategoryList()
	if err != nil {
		return nil, err
	}
	designated, err := cfg.DesignatedCategory()
	if err != nil {
		return nil, err
	}
	return dataset.Load(ctx, fetch.New(cfg.Fetch.Timeout()), dataset.Sources{
		Boundaries: cfg.Data.Boundaries,
		Travel:     cfg.Data.Travel,
	}, dataset.Options{
		Categories: cats,
		Designated: designated,
	})
}

func loadPalette() (*render.Palette, error) {
	return render.LoadPalette(cfg.Render.Palette)
}
