package cmd

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/commutemap/fetch"
)

var (
	downloadDir           string
	downloadBoundariesURL string
	downloadTravelURL     string
	downloadForce         bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the boundary and travel datasets",
	Long: `Download the community boundaries and the Modes of Travel CSV into a
local directory. Files that already exist are skipped unless --force is set.
URLs default to data.boundaries_url and data.travel_url from the config.`,
	Example: `  commutemap download --dir data \
    --boundaries-url https://example.org/Community_Boundaries.geojson \
    --travel-url https://example.org/Modes_of_Travel.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := downloadJobs()
		if err != nil {
			return err
		}

		c := fetch.New(cfg.Fetch.Timeout())
		downloaded, skipped, err := c.DownloadAll(cmd.Context(), jobs, !downloadForce)
		if err != nil {
			return err
		}

		zap.L().Info("download complete",
			zap.String("dir", downloadDir),
			zap.Int("downloaded", downloaded),
			zap.Int("skipped", skipped),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Done: %d downloaded, %d skipped\n", downloaded, skipped)
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVar(&downloadDir, "dir", "data", "output directory")
	downloadCmd.Flags().StringVar(&downloadBoundariesURL, "boundaries-url", "", "boundary GeoJSON URL (default from config)")
	downloadCmd.Flags().StringVar(&downloadTravelURL, "travel-url", "", "Modes of Travel CSV URL (default from config)")
	downloadCmd.Flags().BoolVar(&downloadForce, "force", false, "overwrite existing files")
	rootCmd.AddCommand(downloadCmd)
}

func downloadJobs() ([]fetch.Job, error) {
	boundaries, travel := cfg.Data.BoundariesURL, cfg.Data.TravelURL
	if downloadBoundariesURL != "" {
		boundaries = downloadBoundariesURL
	}
	if downloadTravelURL != "" {
		travel = downloadTravelURL
	}
	if boundaries == "" || travel == "" {
		return nil, eris.New("download: both --boundaries-url and --travel-url (or data.boundaries_url and data.travel_url) are required")
	}

	jobs := make([]fetch.Job, 0, 2)
	for _, u := range []string{boundaries, travel} {
		if !fetch.IsURL(u) {
			return nil, eris.Errorf("download: %q is not an http(s) URL", u)
		}
		jobs = append(jobs, fetch.Job{URL: u, Dest: filepath.Join(downloadDir, fileName(u))})
	}
	return jobs, nil
}

// fileName is the last element of u's path.
func fileName(u string) string {
	base := "download"
	if parsed, err := url.Parse(u); err == nil {
		if b := path.Base(parsed.Path); b != "." && b != "/" {
			base = b
		}
	}
	return base
}
