package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2ng/internal/config"
	"github.com/mark3labs/swagger2ng/internal/logging"
)

const defaultDebounce = 300 * time.Millisecond

type regenerateFunc func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error

var watchRunner = runWatch

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the input document changes",
		Long: "Run generate once, then watch the local input document and regenerate on every change. " +
			"The output directory is overwritten on each run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			debounce, err := cmd.Flags().GetDuration("debounce")
			if err != nil {
				return err
			}
			return watchRunner(cmd.Context(), cfg, debounce)
		},
	}
	addGenerateFlags(cmd.Flags())
	cmd.Flags().Duration("debounce", defaultDebounce, "Quiet period after a change before regenerating")
	return cmd
}

func runWatch(ctx context.Context, cfg *config.Config, debounce time.Duration) error {
	if u, err := url.Parse(cfg.Input); err == nil && u.Scheme != "" && u.Host != "" {
		return newUsageError(fmt.Sprintf("watch: --input must be a local file, got %q", cfg.Input))
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return newUsageError(err.Error())
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	regen := func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
		_, err := generateOnce(ctx, cfg, logger)
		return err
	}
	return watchLoop(ctx, cfg, debounce, regen, logging.Component(logger, "watch"))
}

// watchLoop generates once and then on every debounced change of cfg.Input
// until ctx is done. The parent directory is watched so editors that replace
// the file on save are still seen. Failed regenerations are logged and the
// loop keeps running.
func watchLoop(ctx context.Context, cfg *config.Config, debounce time.Duration, regen regenerateFunc, logger zerolog.Logger) error {
	target, err := filepath.Abs(cfg.Input)
	if err != nil {
		return fmt.Errorf("watch: resolve input: %w", err)
	}
	if st, err := os.Stat(target); err != nil || !st.Mode().IsRegular() {
		return newUsageError(fmt.Sprintf("watch: input %q is not a readable file", cfg.Input))
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(target), err)
	}

	if err := regen(ctx, cfg, logger); err != nil {
		return err
	}
	// Later runs always overwrite the previous output.
	next := *cfg
	next.Force = true

	logger.Info().Str("input", target).Msg("watching for changes")
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug().Str("op", event.Op.String()).Msg("input changed")
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			logger.Warn().Err(err).Msg("watcher error")
		case <-timer.C:
			start := time.Now()
			if err := regen(ctx, &next, logger); err != nil {
				logger.Error().Err(err).Msg("regeneration failed")
				continue
			}
			logger.Info().Dur("took", time.Since(start)).Msg("regenerated")
		}
	}
}
