package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"app-icon-server-go/internal/domain/icon"
	"app-icon-server-go/internal/platform/config"
)

type generateOptions struct {
	outDir    string
	zip       bool
	ico       bool
	icoSize   int
	json      bool
	resampler string
}

func newGenerateCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <image>",
		Short: "Generate icons from an image file",
		Long: `Generate every configured icon size from a square source image.

Outputs:
  - icon_NxN.png files (default)
  - icons.zip with the same entries (--zip)
  - favicon.ico (--ico)
  - icons.json in the HTTP response format (--json)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runGenerate(cmd, cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&opts.zip, "zip", false, "write icons.zip instead of individual PNG files")
	cmd.Flags().BoolVar(&opts.ico, "ico", false, "also write favicon.ico")
	cmd.Flags().IntVar(&opts.icoSize, "ico-size", icon.MaxFaviconSize, "favicon edge length")
	cmd.Flags().BoolVar(&opts.json, "json", false, "also write icons.json")
	cmd.Flags().StringVar(&opts.resampler, "resampler", "", "resampler override (lanczos or nfnt)")
	return cmd
}

func runGenerate(cmd *cobra.Command, cfg *config.Config, input string, opts *generateOptions) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	if int64(len(raw)) > cfg.Icon.MaxUploadBytes {
		return fmt.Errorf("%s: %w (%d > %d bytes)", input, icon.ErrPayloadTooLarge, len(raw), cfg.Icon.MaxUploadBytes)
	}

	resampler := cfg.Icon.Resampler
	if opts.resampler != "" {
		resampler = opts.resampler
	}
	if opts.ico && !slices.Contains(cfg.Icon.Sizes, opts.icoSize) {
		return fmt.Errorf("favicon size %d is not one of the configured sizes %v", opts.icoSize, cfg.Icon.Sizes)
	}

	pipeline, err := icon.NewPipeline(icon.Options{
		RequiredDimension: cfg.Icon.RequiredDimension,
		Sizes:             cfg.Icon.Sizes,
		Resampler:         resampler,
		MaxBytes:          cfg.Icon.MaxUploadBytes,
		Concurrency:       cfg.Icon.Concurrency,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	bundle, err := pipeline.Process(context.Background(), raw)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	out := cmd.OutOrStdout()
	written := make([]string, 0, len(bundle.Variants)+3)

	if opts.zip {
		var buf bytes.Buffer
		if err := bundle.WriteZip(&buf); err != nil {
			return err
		}
		path, err := writeOutput(opts.outDir, "icons.zip", buf.Bytes())
		if err != nil {
			return err
		}
		written = append(written, path)
	} else {
		for _, v := range bundle.Variants {
			path, err := writeOutput(opts.outDir, icon.ArchiveEntryName(v.Size), v.PNG)
			if err != nil {
				return err
			}
			written = append(written, path)
		}
	}

	if opts.ico {
		var buf bytes.Buffer
		if err := bundle.WriteICO(&buf, opts.icoSize); err != nil {
			return err
		}
		path, err := writeOutput(opts.outDir, "favicon.ico", buf.Bytes())
		if err != nil {
			return err
		}
		written = append(written, path)
	}

	if opts.json {
		data, err := sonic.Marshal(bundle.Payload())
		if err != nil {
			return fmt.Errorf("marshal bundle: %w", err)
		}
		path, err := writeOutput(opts.outDir, "icons.json", data)
		if err != nil {
			return err
		}
		written = append(written, path)
	}

	for _, path := range written {
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	fmt.Fprintf(out, "generated %d icons (%d bytes) in %s\n",
		len(bundle.Variants), bundle.TotalBytes(), time.Since(start).Round(time.Millisecond))
	return nil
}

func writeOutput(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
