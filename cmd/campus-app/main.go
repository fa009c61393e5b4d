package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/divnaoki/campus-app/internal/app"
	"github.com/divnaoki/campus-app/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	var frameBudgetMs int

	cmd := &cobra.Command{
		Use:          "campus-app",
		Short:        "Canvas manager for images and video",
		Version:      app.AppVersion,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.FrameBudget = time.Duration(frameBudgetMs) * time.Millisecond

			application, err := app.New(cfg)
			if err != nil {
				return err
			}
			return application.Run()
		},
	}

	cmd.Flags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "application data directory")
	cmd.Flags().IntVar(&cfg.MaxCanvases, "max-canvases", cfg.MaxCanvases, "maximum number of open canvas surfaces")
	cmd.Flags().BoolVar(&cfg.PauseOnBlur, "pause-on-blur", cfg.PauseOnBlur, "pause video playback when a canvas loses focus")
	cmd.Flags().IntVar(&frameBudgetMs, "frame-budget-ms", int(cfg.FrameBudget.Milliseconds()), "per-frame decode budget in milliseconds")
	cmd.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	return cmd
}
