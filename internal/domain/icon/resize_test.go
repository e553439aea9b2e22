package icon

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "app-icon-server-go/internal/platform/testing"
)

func TestContainRect(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		size       int
		want       image.Rectangle
	}{
		{name: "square", srcW: 1024, srcH: 1024, size: 16, want: image.Rect(0, 0, 16, 16)},
		{name: "landscape", srcW: 800, srcH: 600, size: 100, want: image.Rect(0, 12, 100, 87)},
		{name: "portrait", srcW: 600, srcH: 800, size: 100, want: image.Rect(12, 0, 87, 100)},
		{name: "thin", srcW: 1000, srcH: 1, size: 10, want: image.Rect(0, 4, 10, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containRect(tt.srcW, tt.srcH, tt.size))
		})
	}
}

func TestNewResampler(t *testing.T) {
	for _, name := range []string{"", ResamplerLanczos, ResamplerNfnt} {
		r, err := NewResampler(name)
		require.NoError(t, err, name)
		assert.NotNil(t, r)
	}

	_, err := NewResampler("bicubic")
	assert.Error(t, err)
}

func TestResamplers_TransparentCorners(t *testing.T) {
	src := testutil.IconImage(1024)

	for _, name := range []string{ResamplerLanczos, ResamplerNfnt} {
		r, err := NewResampler(name)
		require.NoError(t, err)

		for _, size := range []int{16, 256} {
			out, err := r.Resize(src, size)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, size, size), out.Bounds(), "%s %d", name, size)

			for _, p := range []image.Point{{0, 0}, {size - 1, 0}, {0, size - 1}, {size - 1, size - 1}} {
				assert.Equal(t, uint8(0), out.RGBAAt(p.X, p.Y).A, "%s %d corner %v", name, size, p)
			}
			centre := out.RGBAAt(size/2, size/2)
			assert.Greater(t, centre.A, uint8(200), "%s %d centre", name, size)
		}
	}
}

func TestResamplers_ContainPadsNonSquare(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 10, 20, 30, 255
	}

	for _, name := range []string{ResamplerLanczos, ResamplerNfnt} {
		r, err := NewResampler(name)
		require.NoError(t, err)

		out, err := r.Resize(src, 100)
		require.NoError(t, err)
		assert.Equal(t, color.RGBA{}, out.RGBAAt(50, 5), "%s top padding", name)
		assert.Equal(t, color.RGBA{}, out.RGBAAt(50, 95), "%s bottom padding", name)
		assert.Greater(t, out.RGBAAt(50, 50).A, uint8(250), "%s content", name)
	}
}

func TestResamplers_RejectInvalidSize(t *testing.T) {
	r, err := NewResampler(ResamplerLanczos)
	require.NoError(t, err)

	_, err = r.Resize(testutil.IconImage(8), 0)
	assert.Error(t, err)

	_, err = r.Resize(image.NewRGBA(image.Rect(0, 0, 0, 0)), 16)
	assert.Error(t, err)
}

func TestLanczos3Kernel(t *testing.T) {
	assert.InDelta(t, 3.0, Lanczos3.Support, 1e-9)
	assert.InDelta(t, 1.0, Lanczos3.At(0), 1e-9)
	assert.InDelta(t, 0.0, Lanczos3.At(1), 1e-9)
	assert.InDelta(t, 0.0, Lanczos3.At(2), 1e-9)
	assert.Less(t, Lanczos3.At(1.5), 0.0)
	assert.InDelta(t, Lanczos3.At(0.7), Lanczos3.At(-0.7), 1e-12)
	assert.Zero(t, Lanczos3.At(3.5))
}
