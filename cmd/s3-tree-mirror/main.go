package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/yuya-takeyama/s3-tree-mirror/internal/logging"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/config"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/localfs"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/logger"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/mirror"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/s3client"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/storage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// flagValues holds the raw command-line flags before they are layered over the config file.
type flagValues struct {
	configFile     string
	root           string
	dryRun         bool
	excludes       []string
	quiet          bool
	verbose        bool
	profile        string
	region         string
	endpointURL    string
	pathStyle      bool
	resultJSONFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags flagValues

	rootCmd := &cobra.Command{
		Use:   "s3-tree-mirror [SourceFolder] [DestinationName]",
		Short: "Mirror a folder tree, copying only what the destination is missing",
		Long: `s3-tree-mirror copies a folder tree into a folder named DestinationName at the
storage root. Missing folders are created and missing files are copied by name;
entries that already exist are never overwritten, so an interrupted run can simply
be started again.

SourceFolder and --root are either both s3:// URIs or both local paths.`,
		Version: fmt.Sprintf("%s (commit: %s, built at: %s by %s)", version, commit, date, builtBy),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, &flags, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg)
		},
	}

	rootCmd.Flags().StringVar(&flags.configFile, "config", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&flags.root, "root", "", "Storage root the destination is created in (s3://bucket[/prefix] or a directory)")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dryrun", false, "Shows operations without executing")
	rootCmd.Flags().StringSliceVar(&flags.excludes, "exclude", nil, "Exclude patterns relative to the source folder (multiple allowed)")
	rootCmd.Flags().BoolVar(&flags.quiet, "quiet", false, "Suppress non-error output")
	rootCmd.Flags().BoolVar(&flags.verbose, "verbose", false, "Also print skipped files and debug messages")
	rootCmd.Flags().StringVar(&flags.profile, "profile", "", "AWS profile to use")
	rootCmd.Flags().StringVar(&flags.region, "region", "", "AWS region (uses default if not specified)")
	rootCmd.Flags().StringVar(&flags.endpointURL, "endpoint-url", "", "Custom S3 endpoint URL")
	rootCmd.Flags().BoolVar(&flags.pathStyle, "path-style", false, "Use path-style S3 addressing")
	rootCmd.Flags().StringVar(&flags.resultJSONFile, "result-json-file", "", "Path to output result as JSON file")

	return rootCmd
}

// buildConfig layers explicitly set flags and positional arguments over the config file.
func buildConfig(cmd *cobra.Command, flags *flagValues, args []string) (*config.Config, error) {
	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.LoadFromFile(flags.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := cmd.Flags().Changed
	if set("root") {
		cfg.Root = flags.root
	}
	if set("dryrun") {
		cfg.DryRun = flags.dryRun
	}
	if set("exclude") {
		cfg.Excludes = flags.excludes
	}
	if set("quiet") {
		cfg.Quiet = flags.quiet
	}
	if set("verbose") {
		cfg.Verbose = flags.verbose
	}
	if set("profile") {
		cfg.AWS.Profile = flags.profile
	}
	if set("region") {
		cfg.AWS.Region = flags.region
	}
	if set("endpoint-url") {
		cfg.AWS.EndpointURL = flags.endpointURL
	}
	if set("path-style") {
		cfg.AWS.UsePathStyle = flags.pathStyle
	}
	if set("result-json-file") {
		cfg.ResultJSONFile = flags.resultJSONFile
	}

	if len(args) == 2 {
		cfg.Source = args[0]
		cfg.Destination = args[1]
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	startTime := time.Now()
	runID := uuid.NewString()
	log := logging.NewLogger(cfg.Quiet)

	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		log.Info("Mirroring %s into %q under %s (dry run)", cfg.Source, cfg.Destination, cfg.Root)
	} else {
		log.Info("Mirroring %s into %q under %s", cfg.Source, cfg.Destination, cfg.Root)
	}

	recorder := logger.NewRecorder()
	syncLogger := &logger.SyncLogger{
		IsDryRun:  cfg.DryRun,
		IsQuiet:   cfg.Quiet,
		IsVerbose: cfg.Verbose,
	}

	m := mirror.New(client, logger.Multi(syncLogger, recorder), mirror.Options{
		DryRun:   cfg.DryRun,
		Excludes: cfg.Excludes,
	})
	mirrorErr := m.Mirror(ctx, cfg.Source, cfg.Destination)

	summary := recorder.Summary()
	log.PrintSummary(summary, cfg.DryRun, time.Since(startTime))

	if cfg.ResultJSONFile != "" {
		result := newMirrorResult(runID, cfg, recorder.Events(), mirrorErr)
		if err := writeMirrorResult(cfg.ResultJSONFile, result); err != nil {
			log.Error("failed to write result JSON: %v", err)
			if mirrorErr == nil {
				return fmt.Errorf("failed to write result JSON: %w", err)
			}
		}
	}

	if mirrorErr != nil {
		log.Error("%v", mirrorErr)
		return mirrorErr
	}

	if summary.Failed > 0 {
		log.Info("%d files could not be copied; run again to retry them", summary.Failed)
	}
	return nil
}

func newStorageClient(ctx context.Context, cfg *config.Config) (storage.Client, error) {
	if !cfg.IsS3() {
		client, err := localfs.New(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("invalid storage root: %w", err)
		}
		return client, nil
	}

	var configOpts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}
	if cfg.AWS.Region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(cfg.AWS.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client, err := s3client.NewAWSClient(awsCfg, cfg.Root, s3Options(cfg.AWS))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func s3Options(c config.AWSConfig) func(*s3.Options) {
	return func(o *s3.Options) {
		if c.EndpointURL != "" {
			o.BaseEndpoint = aws.String(c.EndpointURL)
		}
		o.UsePathStyle = c.UsePathStyle
	}
}
