package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"shiftinsight.com/shiftinsight/config"
	"shiftinsight.com/shiftinsight/core"
	"shiftinsight.com/shiftinsight/infrastructure/filesystem"
	"shiftinsight.com/shiftinsight/loader"
)

type loadOptions struct {
	sheet     string
	batchSize int
	quiet     bool
	details   bool
}

func newLoadCmd(root *rootOptions) *cobra.Command {
	var opts loadOptions

	cmd := &cobra.Command{
		Use:   "load <file|s3://bucket/key|s3://bucket/prefix/>...",
		Short: "Load one or more shift workbooks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), root, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Sheet name (default: first sheet with data)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Fact rows per insert transaction (default: LOADER_BATCH_SIZE)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print progress")
	cmd.Flags().BoolVar(&opts.details, "details", false, "Print every skipped row")
	return cmd
}

// workbookSource is one workbook named on the command line, local or in S3.
type workbookSource struct {
	path   string
	bucket string
	key    string
}

func (s workbookSource) filename() string {
	if s.bucket != "" {
		return path.Base(s.key)
	}
	return filepath.Base(s.path)
}

func (s workbookSource) origin() string {
	if s.bucket != "" {
		return core.SourceS3
	}
	return core.SourceCLI
}

func (s workbookSource) String() string {
	if s.bucket != "" {
		return "s3://" + s.bucket + "/" + s.key
	}
	return s.path
}

func (s workbookSource) open(ctx context.Context) (io.ReadCloser, error) {
	if s.bucket == "" {
		return os.Open(s.path)
	}
	var buf bytes.Buffer
	if err := filesystem.ReadFile(ctx, s.bucket, s.key, &buf); err != nil {
		return nil, err
	}
	return io.NopCloser(&buf), nil
}

type listFunc func(ctx context.Context, bucket, prefix string) ([]string, error)

// resolveSources expands S3 prefixes (URIs ending in "/" or naming only a bucket) into the
// supported workbooks under them.
func resolveSources(ctx context.Context, args []string, list listFunc) ([]workbookSource, error) {
	var sources []workbookSource
	for _, arg := range args {
		bucket, key, ok := filesystem.ParseS3URI(arg)
		if !ok {
			sources = append(sources, workbookSource{path: arg})
			continue
		}
		if key != "" && !strings.HasSuffix(key, "/") {
			sources = append(sources, workbookSource{bucket: bucket, key: key})
			continue
		}

		keys, err := list(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		found := 0
		for _, k := range keys {
			if loader.IsSupported(k) {
				sources = append(sources, workbookSource{bucket: bucket, key: k})
				found++
			}
		}
		if found == 0 {
			return nil, fmt.Errorf("no workbooks found under %s", arg)
		}
	}
	return sources, nil
}

func runLoad(ctx context.Context, root *rootOptions, opts loadOptions, args []string, stdout, stderr io.Writer) error {
	sources, err := resolveSources(ctx, args, filesystem.ListFiles)
	if err != nil {
		return err
	}

	svc, _, err := root.open(ctx, func(cfg *config.Configuration) {
		if opts.batchSize > 0 {
			cfg.Loader.BatchSize = opts.batchSize
		}
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	failed := 0
	for _, src := range sources {
		fmt.Fprintln(stdout, color.CyanString("==> %s", src))
		if err := loadOne(ctx, svc, src, opts, stdout, stderr); err != nil {
			fmt.Fprintln(stdout, color.RedString("failed: %v", err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d workbooks failed", failed, len(sources))
	}
	return nil
}

type workbookLoader interface {
	Load(ctx context.Context, in loader.Input, source string, progress loader.ProgressFunc) (*loader.Summary, error)
}

func loadOne(ctx context.Context, svc workbookLoader, src workbookSource, opts loadOptions, stdout, stderr io.Writer) error {
	r, err := src.open(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	var progress loader.ProgressFunc
	if !opts.quiet {
		progress = func(e loader.Event) {
			if e.Status == loader.StatusProgress {
				fmt.Fprintf(stderr, "[%3d%%] %s\n", e.Progress, e.Message)
			}
		}
	}

	summary, err := svc.Load(ctx, loader.Input{
		Filename: src.filename(),
		Sheet:    opts.sheet,
		Reader:   r,
	}, src.origin(), progress)
	if err != nil {
		return err
	}

	renderSummary(stdout, summary)
	if opts.details {
		renderSkips(stdout, summary.SkippedDetails)
	}
	return nil
}
