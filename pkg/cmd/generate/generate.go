package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/compat-todo/compat-todo/internal/compat"
	"github.com/compat-todo/compat-todo/internal/pipeline"
	"github.com/compat-todo/compat-todo/internal/profile"
	"github.com/compat-todo/compat-todo/internal/tracker"
	"github.com/compat-todo/compat-todo/pkg/version"
)

const (
	defaultOutputDir = "."
	cacheFileName    = "issues.json"
)

type Input struct {
	Cached     bool
	Outdated   bool
	OutputDir  string
	CacheFile  string
	Repository string
	APIURL     string
	Policy     string
	Profile    string
	Timeout    time.Duration
	NoWorkbook bool
	NoChart    bool
	NoCounts   bool
}

// DefaultCacheFile is the cache location under the user cache directory.
func DefaultCacheFile() string {
	return filepath.Join(xdg.CacheHome, version.Version.Name, cacheFileName)
}

func NewCmdGenerate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the coverage pages from the tracker issues.",
		Long: `Fetch every issue of the tracker, or read them from the cache with --cached,
and write one page per platform listing the games without a report for it.
With --outdated, also list the games whose reports for a platform predate the
latest milestone without reaching the best status.

Pages of a previous run that this run doesn't write, like the outdated pages
when --outdated is not set, are removed from the output directory.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := execute(cmd); err != nil {
				log.Error(errors.Wrap(err, "could not generate the coverage pages"))
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolP("cached", "c", false,
		"Use the cached issues when the cache file exists. Example: -c")
	cmd.Flags().Bool("outdated", false,
		"Also generate the outdated pages")
	cmd.Flags().StringP("output-dir", "o", defaultOutputDir,
		"Directory to write the pages to")
	cmd.Flags().String("cache-file", DefaultCacheFile(),
		"Issues cache file, compressed when it ends with .xz. Empty disables the cache")
	cmd.Flags().String("repository", tracker.DefaultRepository,
		"Tracker repository as owner/name")
	cmd.Flags().String("api-url", tracker.DefaultAPIURL,
		"Base URL of the tracker API")
	cmd.Flags().String("policy", string(compat.PolicyAbsent),
		fmt.Sprintf("Missing policy: %s or %s", compat.PolicyAbsent, compat.PolicyCoveredElsewhere))
	cmd.Flags().String("profile", "",
		"Label profile file (yaml), the embedded default when empty")
	cmd.Flags().Duration("timeout", tracker.DefaultTimeout,
		"Timeout of each tracker request")
	cmd.Flags().Bool("no-workbook", false,
		"Skip the spreadsheet export")
	cmd.Flags().Bool("no-chart", false,
		"Skip the chart page")
	cmd.Flags().Bool("no-counts", false,
		"Hide the game counts in the index page")

	return cmd
}

// execute runs the command with the configured input and prints the summary.
func execute(cmd *cobra.Command) error {
	input := inputFromConfig()
	res, err := Run(cmd.Context(), input)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := printSummary(out, res); err != nil {
		log.Warnf("Unable to print the summary: %v", err)
	}
	for _, name := range res.Timers.Names() {
		log.Debugf("Timer %s: %.3fs", name, res.Timers.Timers[name].Total)
	}
	log.Infof("Wrote %d files to %s", len(res.Files), input.OutputDir)
	fmt.Fprintln(out, "Done.")
	return nil
}

func inputFromConfig() *Input {
	return &Input{
		Cached:     viper.GetBool("cached"),
		Outdated:   viper.GetBool("outdated"),
		OutputDir:  viper.GetString("output-dir"),
		CacheFile:  viper.GetString("cache-file"),
		Repository: viper.GetString("repository"),
		APIURL:     viper.GetString("api-url"),
		Policy:     viper.GetString("policy"),
		Profile:    viper.GetString("profile"),
		Timeout:    viper.GetDuration("timeout"),
		NoWorkbook: viper.GetBool("no-workbook"),
		NoChart:    viper.GetBool("no-chart"),
		NoCounts:   viper.GetBool("no-counts"),
	}
}

// Run validates the input and runs the pipeline.
func Run(ctx context.Context, input *Input) (*pipeline.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	policy, err := compat.ParsePolicy(input.Policy)
	if err != nil {
		return nil, err
	}
	p, err := profile.Load(input.Profile)
	if err != nil {
		return nil, err
	}
	if input.Cached && input.CacheFile == "" {
		return nil, errors.New("--cached requires a cache file")
	}

	log.Infof("Generating coverage pages for %s...", input.Repository)
	return pipeline.Run(ctx, &pipeline.Options{
		Repository: input.Repository,
		APIURL:     input.APIURL,
		UserAgent:  version.Version.UserAgent(),
		Timeout:    input.Timeout,
		OutputDir:  input.OutputDir,
		CacheFile:  input.CacheFile,
		UseCache:   input.Cached,
		Profile:    p,
		Policy:     policy,
		Outdated:   input.Outdated,
		Chart:      !input.NoChart,
		Workbook:   !input.NoWorkbook,
		ShowCounts: !input.NoCounts,
	})
}
