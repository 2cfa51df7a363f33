package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/insightly/internal/httpapi"
	"github.com/forPelevin/insightly/internal/pipeline"
	"github.com/forPelevin/insightly/internal/watch"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transcribe and analyze endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			ctx, stop := signalContext()
			defer stop()

			uc, err := pipeline.Build(ctx, cfg)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			srv := httpapi.New(pipeline.NewService(uc, cfg), cfg.Logger)
			return ignoreCanceled(srv.ListenAndServe(ctx, addr))
		},
	}
	cmd.Flags().String("addr", ":8000", "Listen address")
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Transcribe audio files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := cmd.Flags().GetInt("concurrency")

			svc, cfg, err := transcriptionService(cmd)
			if err != nil {
				return err
			}

			w, err := watch.New(args[0], svc, cfg.Logger, n)
			if err != nil {
				return err
			}
			defer w.Stop()

			ctx, stop := signalContext()
			defer stop()
			return ignoreCanceled(w.Start(ctx))
		},
	}
	cmd.Flags().Int("concurrency", 2, "Files transcribed at once")
	return cmd
}
