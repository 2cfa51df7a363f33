package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	if err := newRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "insightly",
		Short:        "Describe what happens in a few seconds of a live stream",
		SilenceUsage: true,
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("config", "", "YAML config file (default $INSIGHTLY_CONFIG)")
	root.PersistentFlags().String("describer", "", "Description provider: openai or gemini")
	root.PersistentFlags().String("transcriber", "", "Transcription provider: assemblyai or whispercpp")

	root.AddCommand(
		newAnalyzeCmd(),
		newTranscribeCmd(),
		newServeCmd(),
		newWatchCmd(),
	)
	return root
}
