package icon

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"app-icon-server-go/internal/platform/logging"
	"app-icon-server-go/internal/platform/observability"
)

// Generator derives icon variants from a validated SourceImage.
type Generator struct {
	resampler   Resampler
	logger      *logging.Logger
	concurrency int
}

// GeneratorOption customises a Generator.
type GeneratorOption func(*Generator)

// WithLogger attaches a logger used for per-size timing at debug level.
func WithLogger(logger *logging.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logger }
}

// WithConcurrency caps the number of sizes processed at once. n <= 0 means GOMAXPROCS.
func WithConcurrency(n int) GeneratorOption {
	return func(g *Generator) { g.concurrency = n }
}

// NewGenerator builds a Generator around resampler.
func NewGenerator(resampler Resampler, opts ...GeneratorOption) *Generator {
	g := &Generator{resampler: resampler}
	for _, opt := range opts {
		opt(g)
	}
	if g.concurrency <= 0 {
		g.concurrency = runtime.GOMAXPROCS(0)
	}
	return g
}

// Generate produces one Variant per entry of sizes, in the same order. The first
// failure cancels the remaining work and is returned as a *GenerationError; no
// partial bundle is ever returned.
func (g *Generator) Generate(ctx context.Context, src *SourceImage, sizes []int) (*ResultBundle, error) {
	if src == nil || src.Image() == nil {
		return nil, &GenerationError{Stage: StageValidate, Cause: fmt.Errorf("source image is nil")}
	}
	if len(sizes) == 0 {
		return nil, &GenerationError{Stage: StageValidate, Cause: fmt.Errorf("no target sizes")}
	}
	for _, size := range sizes {
		if size <= 0 {
			return nil, &GenerationError{Size: size, Stage: StageValidate, Cause: fmt.Errorf("size must be positive")}
		}
	}

	variants := make([]Variant, len(sizes))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.concurrency)

	for i, size := range sizes {
		group.Go(func() error {
			v, err := g.variant(groupCtx, src, size)
			if err != nil {
				return err
			}
			variants[i] = v
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &ResultBundle{Variants: variants}, nil
}

func (g *Generator) variant(ctx context.Context, src *SourceImage, size int) (v Variant, err error) {
	ctx, end := observability.StartSpan(ctx, "icon.generate", "size="+strconv.Itoa(size))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &GenerationError{Size: size, Stage: "panic", Cause: fmt.Errorf("%v", r)}
		}
		end(err)
	}()

	if err := ctx.Err(); err != nil {
		return Variant{}, &GenerationError{Size: size, Stage: StageResize, Cause: err}
	}
	resized, err := g.resampler.Resize(src.Image(), size)
	if err != nil {
		return Variant{}, &GenerationError{Size: size, Stage: StageResize, Cause: err}
	}

	if err := ctx.Err(); err != nil {
		return Variant{}, &GenerationError{Size: size, Stage: StageSharpen, Cause: err}
	}
	sharpened := Sharpen(resized, SharpenSigma(size))

	if err := ctx.Err(); err != nil {
		return Variant{}, &GenerationError{Size: size, Stage: StageEncode, Cause: err}
	}
	encoded, err := EncodePNG(sharpened)
	if err != nil {
		return Variant{}, &GenerationError{Size: size, Stage: StageEncode, Cause: err}
	}

	elapsed := time.Since(start)
	observability.RecordMetric(ctx, "icon.variant.duration_ms", float64(elapsed.Milliseconds()),
		map[string]string{"size": strconv.Itoa(size)})
	g.logger.DebugTag("图标", "%dx%d 生成完成，%d 字节，耗时 %s", size, size, len(encoded), elapsed)

	return Variant{Size: size, PNG: encoded}, nil
}
