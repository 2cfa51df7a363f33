package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forPelevin/insightly/internal/logging"
	"github.com/forPelevin/insightly/internal/pipeline"
	"github.com/forPelevin/insightly/internal/render"
	"github.com/forPelevin/insightly/internal/types"
	"github.com/forPelevin/insightly/internal/usecase"
)

const defaultSeconds = 10

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Sample frames and audio from a live stream and describe them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0])
		},
	}
	cmd.Flags().Int("seconds", defaultSeconds, fmt.Sprintf("Seconds of stream to sample (%d-%d)", types.MinDuration, types.MaxDuration))
	cmd.Flags().String("out", "", "Write frames, audio and report.json under this directory")
	cmd.Flags().Bool("parallel", false, "Extract frames and audio concurrently")
	return cmd
}

func runAnalyze(cmd *cobra.Command, url string) error {
	seconds, _ := cmd.Flags().GetInt("seconds")
	req := types.StreamRequest{URL: url, DurationSeconds: seconds}
	if err := req.Validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir, _ = cmd.Flags().GetString("out")
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel, _ = cmd.Flags().GetBool("parallel")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	rep, runDir, err := pipeline.Run(ctx, cfg, req)
	if err != nil {
		return err
	}
	if runDir != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "artifacts: %s\n", runDir)
	}
	return render.Text(cmd.OutOrStdout(), rep)
}

func newTranscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a local audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := transcriptionService(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			text, err := svc.TranscribeFile(ctx, args[0])
			if err != nil {
				return fmt.Errorf("transcribe: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

// transcriptionService builds a service that only carries a transcriber, so
// no description provider key is needed.
func transcriptionService(cmd *cobra.Command) (*pipeline.Service, pipeline.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.ValidateTranscription(); err != nil {
		return nil, cfg, fmt.Errorf("config: %w", err)
	}
	asr, err := pipeline.NewTranscriber(cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("config: %w", err)
	}
	uc := usecase.New(usecase.Deps{ASR: asr, Log: cfg.Logger})
	return pipeline.NewService(uc, cfg), cfg, nil
}

func loadConfig(cmd *cobra.Command) (pipeline.Config, error) {
	cfg := pipeline.Defaults()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("INSIGHTLY_CONFIG")
	}
	if path != "" {
		if err := pipeline.LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	pipeline.ApplyEnv(&cfg, os.Getenv)

	if v, _ := cmd.Flags().GetString("describer"); v != "" {
		cfg.Describer = v
	}
	if v, _ := cmd.Flags().GetString("transcriber"); v != "" {
		cfg.Transcriber = v
	}
	cfg.Logger = logging.FromEnv()
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
