package icon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"app-icon-server-go/internal/domain/eventbus"
	platformerrors "app-icon-server-go/internal/platform/errors"
	"app-icon-server-go/internal/platform/logging"
)

// DefaultMaxBytes is the upload ceiling applied by ProcessReader when none is configured.
const DefaultMaxBytes = 5 * 1024 * 1024

// Pipeline runs decode, validate and generate for one upload.
type Pipeline struct {
	validator Validator
	generator *Generator
	sizes     []int
	maxBytes  int64
	logger    *logging.Logger
	events    *eventbus.Bus
}

// Options configures the pipeline behaviour.
type Options struct {
	RequiredDimension int
	Sizes             []int
	Resampler         string
	MaxBytes          int64
	Concurrency       int
	Logger            *logging.Logger
	Events            *eventbus.Bus
}

// NewPipeline constructs a pipeline; zero-valued options take the package defaults.
func NewPipeline(opts Options) (*Pipeline, error) {
	resampler, err := NewResampler(opts.Resampler)
	if err != nil {
		return nil, err
	}

	sizes := opts.Sizes
	if len(sizes) == 0 {
		sizes = DefaultSizes()
	}
	for _, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("invalid target size %d", size)
		}
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Pipeline{
		validator: NewValidator(opts.RequiredDimension),
		generator: NewGenerator(resampler, WithLogger(opts.Logger), WithConcurrency(opts.Concurrency)),
		sizes:     append([]int(nil), sizes...),
		maxBytes:  maxBytes,
		logger:    opts.Logger,
		events:    opts.Events,
	}, nil
}

// Sizes returns a copy of the configured target sizes.
func (p *Pipeline) Sizes() []int {
	return append([]int(nil), p.sizes...)
}

// Process converts raw image bytes into a ResultBundle. The header is validated before
// the full decode so that wrong-sized uploads never pay for pixel decoding.
func (p *Pipeline) Process(ctx context.Context, raw []byte) (*ResultBundle, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	requestID := RequestIDFromContext(ctx)

	bundle, err := p.process(ctx, raw)
	if err != nil {
		p.events.PublishAsync(eventbus.EventIconFailed, eventbus.IconFailedData{
			RequestID: requestID,
			Kind:      string(platformerrors.KindOf(err)),
			Message:   err.Error(),
		})
		return nil, err
	}

	elapsed := time.Since(start)
	p.events.PublishAsync(eventbus.EventIconGenerated, eventbus.IconGeneratedData{
		RequestID: requestID,
		Variants:  len(bundle.Variants),
		Bytes:     bundle.TotalBytes(),
		Duration:  elapsed,
	})
	p.logger.InfoTag("图标", "生成 %d 个图标，共 %d 字节，耗时 %s", len(bundle.Variants), bundle.TotalBytes(), elapsed)
	return bundle, nil
}

func (p *Pipeline) process(ctx context.Context, raw []byte) (*ResultBundle, error) {
	cfg, format, err := DecodeConfig(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validator.Validate(cfg.Width, cfg.Height); err != nil {
		p.logger.WarnTag("图标", "尺寸不符: format=%s %dx%d", format, cfg.Width, cfg.Height)
		return nil, err
	}

	src, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validator.ValidateImage(src); err != nil {
		return nil, err
	}

	return p.generator.Generate(ctx, src, p.sizes)
}

// ProcessReader reads at most the configured ceiling from r and then runs Process.
func (p *Pipeline) ProcessReader(ctx context.Context, r io.Reader) (*ResultBundle, error) {
	if r == nil {
		return nil, &DecodeError{Cause: errors.New("image reader is required")}
	}

	limited := &io.LimitedReader{R: r, N: p.maxBytes + 1}
	buf := bytes.NewBuffer(make([]byte, 0, 64*1024))
	if _, err := io.Copy(buf, limited); err != nil {
		return nil, fmt.Errorf("read image bytes: %w", err)
	}
	if limited.N <= 0 {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrPayloadTooLarge, p.maxBytes)
	}
	return p.Process(ctx, buf.Bytes())
}

type requestIDKey struct{}

// WithRequestID tags ctx so pipeline events can be correlated with the HTTP request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
