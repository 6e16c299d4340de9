package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/veloxhtml/velox"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render an HTML file into layout items",
	Long: `Render reads an HTML document from a file (or stdin when the
argument is "-" or omitted) and writes the resulting layout items as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().IntP("chunk-size", "c", 0, "chunk size override in bytes (0 = size-tiered default)")
	renderCmd.Flags().Bool("no-chunking", false, "process the whole input in a single pass")
	renderCmd.Flags().Duration("timeout", 0, "single-pass timeout (0 = default)")
	renderCmd.Flags().Duration("chunk-timeout", 0, "per-chunk timeout (0 = default)")
	renderCmd.Flags().Int("max-items", 0, "item cap, markers included (0 = default)")
	renderCmd.Flags().StringP("output", "o", "", "write JSON to a file instead of stdout")
	renderCmd.Flags().Bool("pretty", false, "indent the JSON output")

	mustBindPFlag("render.chunk_size", renderCmd.Flags().Lookup("chunk-size"))
	mustBindPFlag("render.no_chunking", renderCmd.Flags().Lookup("no-chunking"))
	mustBindPFlag("render.timeout", renderCmd.Flags().Lookup("timeout"))
	mustBindPFlag("render.chunk_timeout", renderCmd.Flags().Lookup("chunk-timeout"))
	mustBindPFlag("render.max_items", renderCmd.Flags().Lookup("max-items"))
	mustBindPFlag("render.output", renderCmd.Flags().Lookup("output"))
	mustBindPFlag("render.pretty", renderCmd.Flags().Lookup("pretty"))
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	raw, source, err := readInput(args)
	if err != nil {
		return err
	}
	logger.Info("rendering document",
		zap.String("source", source),
		zap.Int("input_bytes", len(raw)))

	r := velox.Parse(string(raw)).
		WithLogger(logger).
		EnableChunking(!viper.GetBool("render.no_chunking")).
		ChunkSize(viper.GetInt("render.chunk_size")).
		GlobalTimeout(viper.GetDuration("render.timeout")).
		PerChunkTimeout(viper.GetDuration("render.chunk_timeout")).
		MaxItems(viper.GetInt("render.max_items")).
		WithProgress(func(f float64) {
			logger.Debug("progress", zap.Float64("fraction", f))
		})

	start := time.Now()
	result, err := r.Run(ctx)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("render failed: %s", result.Error)
	}

	logger.Info("render complete",
		zap.Int("items", len(result.Items)),
		zap.Bool("synthesized", result.Synthesized),
		zap.Int("chunks", result.Perf.Chunks),
		zap.Int("timed_out", result.Perf.TimedOut),
		zap.Duration("elapsed", time.Since(start)))

	var data []byte
	if viper.GetBool("render.pretty") {
		data, err = sonic.ConfigDefault.MarshalIndent(result, "", "  ")
	} else {
		data, err = sonic.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	return writeOutput(data, viper.GetString("render.output"))
}

// readInput loads the document from the named file, or stdin for "-" or
// no argument.
func readInput(args []string) (raw []byte, source string, err error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		return raw, "stdin", nil
	}

	raw, err = os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return raw, args[0], nil
}

func writeOutput(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
