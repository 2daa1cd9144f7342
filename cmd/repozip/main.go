package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/quantmind-br/repozip/internal/app"
	"github.com/quantmind-br/repozip/internal/config"
	"github.com/quantmind-br/repozip/internal/output"
	"github.com/quantmind-br/repozip/internal/server"
	"github.com/quantmind-br/repozip/internal/utils"
	"github.com/quantmind-br/repozip/pkg/version"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile string
	verbose bool

	// Dependencies for testing
	doctorClient = &http.Client{Timeout: 5 * time.Second}
	newService   = app.NewService
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "repozip",
	Short: "Download a GitHub repository subfolder as a ZIP",
	Long: `repozip turns a GitHub URL such as
https://github.com/owner/repo/tree/main/docs into a ZIP archive containing only
that folder, with paths relative to it.

Run "repozip serve" for the HTTP API or "repozip download <url>" to save an
archive locally.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.repozip/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout for GitHub calls (default 60s)")
	rootCmd.PersistentFlags().String("user-agent", "", "User-Agent sent to GitHub")

	_ = viper.BindPFlag("github.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("github.user_agent", rootCmd.PersistentFlags().Lookup("user-agent"))

	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	downloadCmd.Flags().StringP("output", "o", ".", "Output directory")
	downloadCmd.Flags().Bool("force", false, "Overwrite an existing file")
	downloadCmd.Flags().Bool("extract", false, "Unpack into a directory instead of writing a .zip")
	downloadCmd.Flags().Bool("dry-run", false, "Resolve and download but do not write anything")
	downloadCmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves GET /api/download?repo=<github-url> and GET /healthz until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log := utils.NewLoggerFromConfig(cfg.Logging, verbose)
		svc, err := newService(app.ServiceOptions{Config: cfg, Logger: log})
		if err != nil {
			return fmt.Errorf("failed to create service: %w", err)
		}

		ctx, stop := signalContext()
		defer stop()

		srv := server.New(server.Options{
			Config:  cfg.Server,
			Handler: server.NewHandler(server.HandlerOptions{Downloader: svc, Logger: log}),
			Logger:  log,
		})
		return srv.Serve(ctx)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download a repository folder as a ZIP",
	Example: `  repozip download https://github.com/owner/repo/tree/main/docs
  repozip download github.com/owner/repo -o ./archives --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")
	extract, _ := cmd.Flags().GetBool("extract")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	log := utils.NewLoggerFromConfig(cfg.Logging, verbose)
	svc, err := newService(app.ServiceOptions{Config: cfg, Logger: log})
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	var bar *progressbar.ProgressBar
	var progress func(read, total int64)
	if !noProgress {
		progress = utils.ProgressReporter(utils.DescDownloading, func(b *progressbar.ProgressBar) { bar = b })
	}

	out, err := svc.DownloadWithProgress(ctx, args[0], progress)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	writer := output.NewWriter(output.WriterOptions{
		BaseDir: outputDir,
		Force:   force,
		DryRun:  dryRun,
		Extract: extract,
	})
	path, err := writer.Write(ctx, out)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would write %s (%d files, %d bytes)\n", path, len(out.Entries), out.Size())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d files, %d bytes)\n", path, len(out.Entries), out.Size())
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check connectivity and configuration",
	Long:  "Verifies that GitHub is reachable and the configuration is valid.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Checking repozip setup...")
		allPassed := true

		fmt.Fprint(out, "  Config file: ")
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(out, "FAILED (%v)\n", err)
			cfg = config.Default()
			allPassed = false
		} else if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "OK (%s)\n", used)
		} else {
			fmt.Fprintln(out, "OK (defaults)")
		}

		fmt.Fprint(out, "  GitHub API: ")
		allPassed = reportCheck(out, checkReachable(cmd.Context(), cfg.GitHub.APIURL, cfg.GitHub.UserAgent)) && allPassed

		fmt.Fprint(out, "  GitHub archives: ")
		allPassed = reportCheck(out, checkReachable(cmd.Context(), cfg.GitHub.ArchiveURL, cfg.GitHub.UserAgent)) && allPassed

		fmt.Fprint(out, "  Write permissions: ")
		allPassed = reportCheck(out, checkWritePermissions(".")) && allPassed

		fmt.Fprintln(out)
		if allPassed {
			fmt.Fprintln(out, "All checks passed!")
		} else {
			fmt.Fprintln(out, "Some checks failed. Please resolve the issues above.")
		}
		return nil
	},
}

func reportCheck(out io.Writer, err error) bool {
	if err != nil {
		fmt.Fprintf(out, "FAILED (%v)\n", err)
		return false
	}
	fmt.Fprintln(out, "OK")
	return true
}

// checkReachable issues a HEAD request; any response below 500 counts
func checkReachable(ctx context.Context, url, userAgent string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := doctorClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// checkWritePermissions checks that dir accepts new files
func checkWritePermissions(dir string) error {
	f, err := os.CreateTemp(dir, ".repozip_test_write")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}
