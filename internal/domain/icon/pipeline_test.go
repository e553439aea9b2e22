package icon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app-icon-server-go/internal/domain/eventbus"
	platformerrors "app-icon-server-go/internal/platform/errors"
	testutil "app-icon-server-go/internal/platform/testing"
)

func newTestPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	p, err := NewPipeline(opts)
	require.NoError(t, err)
	return p
}

func TestPipeline_GeneratesAllSizes(t *testing.T) {
	p := newTestPipeline(t, Options{Logger: testutil.SetupTestLogger(t)})

	bundle, err := p.Process(context.Background(), testutil.IconPNG(t, RequiredDimension))
	require.NoError(t, err)
	require.Len(t, bundle.Variants, 7)
	assert.Equal(t, []int{16, 32, 64, 128, 256, 512, 1024}, bundle.Sizes())

	for _, v := range bundle.Variants {
		img, err := png.Decode(bytes.NewReader(v.PNG))
		require.NoError(t, err, "size %d", v.Size)
		assert.Equal(t, v.Size, img.Bounds().Dx())
		assert.Equal(t, v.Size, img.Bounds().Dy())
	}

	v256, ok := bundle.Lookup(256)
	require.True(t, ok)
	img, err := png.Decode(bytes.NewReader(v256.PNG))
	require.NoError(t, err)
	for _, pt := range [][2]int{{0, 0}, {255, 0}, {0, 255}, {255, 255}} {
		_, _, _, a := img.At(pt[0], pt[1]).RGBA()
		assert.Zero(t, a, "corner %v must be transparent", pt)
	}
	_, _, _, a := img.At(128, 128).RGBA()
	assert.NotZero(t, a)

	payload := bundle.Payload()
	require.Len(t, payload.Icons, 7)
	assert.Equal(t, 16, payload.Icons[0].Size)
	assert.Equal(t, bundle.Variants[0].Base64(), payload.Icons[0].Buffer)
}

func TestPipeline_Idempotent(t *testing.T) {
	p := newTestPipeline(t, Options{RequiredDimension: 128, Sizes: []int{16, 32, 64}})
	raw := testutil.IconPNG(t, 128)

	first, err := p.Process(context.Background(), raw)
	require.NoError(t, err)
	second, err := p.Process(context.Background(), raw)
	require.NoError(t, err)

	for i := range first.Variants {
		assert.Equal(t, first.Variants[i].PNG, second.Variants[i].PNG)
	}
}

func TestPipeline_WrongDimensionsFailValidation(t *testing.T) {
	bus := eventbus.New(1, 8)
	bus.Start()
	defer bus.Stop()
	stats := eventbus.NewStats()
	require.NoError(t, stats.Attach(bus))

	p := newTestPipeline(t, Options{Events: bus})

	bundle, err := p.Process(context.Background(), testutil.SolidJPEG(t, 800, 600))
	assert.Nil(t, bundle)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, 800, vErr.Width)
	assert.Equal(t, 600, vErr.Height)
	assert.Equal(t, 1024, vErr.Expected)

	var genErr *GenerationError
	assert.False(t, errors.As(err, &genErr))

	bus.WaitAsync()
	snap := stats.Snapshot()
	assert.Equal(t, int64(1), snap.Failures["validation"])
	assert.Zero(t, snap.Generated)
}

func TestPipeline_UndecodableInput(t *testing.T) {
	p := newTestPipeline(t, Options{})

	for _, raw := range [][]byte{[]byte("definitely not an image"), nil} {
		_, err := p.Process(context.Background(), raw)

		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		var vErr *ValidationError
		assert.False(t, errors.As(err, &vErr))
		assert.Equal(t, platformerrors.KindDecode, platformerrors.KindOf(err))
	}
}

func TestPipeline_PublishesGeneratedEvent(t *testing.T) {
	bus := eventbus.New(1, 8)
	bus.Start()
	defer bus.Stop()

	got := make(chan eventbus.IconGeneratedData, 1)
	require.NoError(t, bus.Subscribe(eventbus.EventIconGenerated, func(data eventbus.IconGeneratedData) {
		got <- data
	}))

	p := newTestPipeline(t, Options{RequiredDimension: 64, Sizes: []int{16, 32}, Events: bus})
	ctx := WithRequestID(context.Background(), "req-1")
	bundle, err := p.Process(ctx, testutil.IconPNG(t, 64))
	require.NoError(t, err)

	bus.WaitAsync()
	data := <-got
	assert.Equal(t, "req-1", data.RequestID)
	assert.Equal(t, 2, data.Variants)
	assert.Equal(t, bundle.TotalBytes(), data.Bytes)
}

func TestPipeline_ProcessReaderLimit(t *testing.T) {
	raw := testutil.IconPNG(t, 64)

	p := newTestPipeline(t, Options{RequiredDimension: 64, Sizes: []int{16}, MaxBytes: int64(len(raw))})
	bundle, err := p.ProcessReader(context.Background(), bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Len(t, bundle.Variants, 1)

	small := newTestPipeline(t, Options{RequiredDimension: 64, Sizes: []int{16}, MaxBytes: int64(len(raw) - 1)})
	_, err = small.ProcessReader(context.Background(), bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Equal(t, platformerrors.KindInput, platformerrors.KindOf(err))

	_, err = small.ProcessReader(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewPipeline_RejectsBadOptions(t *testing.T) {
	_, err := NewPipeline(Options{Resampler: "cubic"})
	assert.Error(t, err)

	_, err = NewPipeline(Options{Sizes: []int{16, -1}})
	assert.Error(t, err)
}

func TestIconErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		want platformerrors.Kind
	}{
		{err: &DecodeError{Cause: errors.New("x")}, want: platformerrors.KindDecode},
		{err: fmt.Errorf("wrap: %w", &ValidationError{Width: 1, Height: 1, Expected: 2}), want: platformerrors.KindValidation},
		{err: &GenerationError{Size: 16, Stage: StageEncode, Cause: errors.New("x")}, want: platformerrors.KindGeneration},
		{err: fmt.Errorf("%w: exceeds 10 bytes", ErrPayloadTooLarge), want: platformerrors.KindInput},
		{err: errors.New("other"), want: platformerrors.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, platformerrors.KindOf(tt.err))
		})
	}
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Equal(t, "abc", RequestIDFromContext(WithRequestID(context.Background(), "abc")))
	assert.True(t, strings.HasPrefix(ArchiveEntryName(16), "icon_16x16"))
}
