package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/actuallystonmai/country-directory/internal/source"
	"github.com/actuallystonmai/country-directory/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sourceURL string
	useSeed   bool
	seed      int64
	timeout   time.Duration
	logFile   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse randomly generated users grouped by country",
	Long: `Loads one batch of user profiles and lists countries by number of users.

Select a country and press enter to see its users, newest registration first.
Use a/m/f (or tab) to filter by gender and r to load a fresh batch.`,
	SilenceUsage: true,
	RunE:         runBrowse,
}

func init() {
	rootCmd.Flags().StringVar(&sourceURL, "url", source.DefaultURL, "profile endpoint")
	rootCmd.Flags().BoolVar(&useSeed, "offline", false, "generate profiles locally instead of calling the endpoint")
	rootCmd.Flags().Int64Var(&seed, "seed", 42, "random seed for --offline")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write diagnostics to this file (the terminal is owned by the UI)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	var loader source.Loader
	if useSeed {
		loader = source.NewSeed(seed)
	} else {
		loader = source.NewClient(&http.Client{Timeout: timeout}, sourceURL, log)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	// Cancelling on return abandons a load still in flight after quit.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.New(ctx, loader, log), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	if logFile == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logFile}
	cfg.ErrorOutputPaths = []string{logFile}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}
