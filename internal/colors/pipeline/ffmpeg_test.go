package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/i474232898/horizon-colors/internal/colors"
)

// splitFrame is 40x10: left half red, right half blue.
func splitFrame() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 40; x++ {
			c := color.RGBA{R: 0xff, A: 0xff}
			if x >= 20 {
				c = color.RGBA{B: 0xff, A: 0xff}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestAverageColor(t *testing.T) {
	img := splitFrame()

	hex, err := AverageColor(img, image.Rect(0, 0, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", hex)

	hex, err = AverageColor(img, image.Rect(10, 0, 30, 10))
	require.NoError(t, err)
	assert.Equal(t, "#800080", hex)

	// Partially outside: only the overlap counts.
	hex, err = AverageColor(img, image.Rect(30, 5, 100, 100))
	require.NoError(t, err)
	assert.Equal(t, "#0000ff", hex)

	_, err = AverageColor(img, image.Rect(50, 50, 60, 60))
	assert.ErrorIs(t, err, errRegionOutside)
}

func newTestPipeline(t *testing.T, regions []colors.Region) *FFmpeg {
	t.Helper()
	return NewFFmpeg(Config{FeedURL: "rtsp://camera.local/stream", Regions: regions}, zaptest.NewLogger(t))
}

func TestExtract(t *testing.T) {
	p := newTestPipeline(t, []colors.Region{
		{Label: "west", X: 0, Y: 0, Width: 10, Height: 10},
		{Label: "east", X: 30, Y: 0, Width: 10, Height: 10},
	})
	p.grab = func(context.Context) (image.Image, error) { return splitFrame(), nil }

	got, err := p.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, colors.Colors{"west": "#ff0000", "east": "#0000ff"}, got)
}

func TestExtractRegionOutsideFrame(t *testing.T) {
	p := newTestPipeline(t, []colors.Region{{Label: "north-east", X: 500, Y: 0, Width: 10, Height: 10}})
	p.grab = func(context.Context) (image.Image, error) { return splitFrame(), nil }

	_, err := p.Extract(context.Background())
	assert.ErrorIs(t, err, errRegionOutside)
}

func TestExtractOpensCircuitAfterRepeatedFailures(t *testing.T) {
	p := newTestPipeline(t, []colors.Region{{Label: "west", Width: 1, Height: 1}})
	calls := 0
	boom := errors.New("connection refused")
	p.grab = func(context.Context) (image.Image, error) {
		calls++
		return nil, boom
	}

	for i := 0; i < 3; i++ {
		_, err := p.Extract(context.Background())
		assert.ErrorIs(t, err, boom)
	}

	_, err := p.Extract(context.Background())
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, 3, calls)
}

func TestExtractWithoutRegions(t *testing.T) {
	p := newTestPipeline(t, nil)
	_, err := p.Extract(context.Background())
	assert.ErrorIs(t, err, errNoRegions)
}

func TestGrabFrameWithoutFeed(t *testing.T) {
	p := NewFFmpeg(Config{Regions: []colors.Region{{Label: "west", Width: 1, Height: 1}}}, zaptest.NewLogger(t))
	_, err := p.Extract(context.Background())
	assert.ErrorIs(t, err, errNoFeed)
}
