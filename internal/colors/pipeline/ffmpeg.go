package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/horizon-colors/internal/colors"
)

var (
	errNoFeed        = errors.New("feed url is not configured")
	errNoRegions     = errors.New("no regions configured")
	errCircuitOpen   = errors.New("circuit breaker open")
	errRegionOutside = errors.New("region lies outside the frame")
)

// Config describes where frames come from and which regions to reduce.
type Config struct {
	FeedURL string
	Binary  string
	Timeout time.Duration
	Regions []colors.Region
}

// FFmpeg grabs a single frame from a live feed with ffmpeg and reduces each
// configured region to its average color.
type FFmpeg struct {
	name    string
	cfg     Config
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger

	// grab is swapped in tests.
	grab func(ctx context.Context) (image.Image, error)
}

var _ colors.Pipeline = (*FFmpeg)(nil)

// NewFFmpeg creates the pipeline. A zero Timeout means the caller's context
// alone bounds a run.
func NewFFmpeg(cfg Config, logger *zap.Logger) *FFmpeg {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	logger = logger.Named("pipeline")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ffmpeg",
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	p := &FFmpeg{
		name:    "ffmpeg",
		cfg:     cfg,
		circuit: cb,
		logger:  logger,
	}
	p.grab = p.grabFrame
	return p
}

// Name identifies the pipeline in logs.
func (p *FFmpeg) Name() string {
	return p.name
}

// Extract captures one frame and returns a color for every region.
func (p *FFmpeg) Extract(ctx context.Context) (colors.Colors, error) {
	if len(p.cfg.Regions) == 0 {
		return nil, errNoRegions
	}
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	result, err := p.circuit.Execute(func() (interface{}, error) {
		return p.grab(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}
	frame, ok := result.(image.Image)
	if !ok || frame == nil {
		return nil, fmt.Errorf("unexpected frame type %T", result)
	}

	out := make(colors.Colors, len(p.cfg.Regions))
	for _, r := range p.cfg.Regions {
		rect := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
		hex, err := AverageColor(frame, rect)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", r.Label, err)
		}
		out[r.Label] = hex
	}

	p.logger.Debug("extracted colors",
		zap.Int("width", frame.Bounds().Dx()),
		zap.Int("height", frame.Bounds().Dy()),
		zap.Any("colors", out),
	)
	return out, nil
}

// grabFrame asks ffmpeg for the first decodable frame as PNG on stdout.
func (p *FFmpeg) grabFrame(ctx context.Context) (image.Image, error) {
	if p.cfg.FeedURL == "" {
		return nil, errNoFeed
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.cfg.Binary,
		"-hide_banner",
		"-loglevel", "error",
		"-i", p.cfg.FeedURL,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg: empty output")
	}

	frame, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: decode frame: %w", err)
	}
	return frame, nil
}

// AverageColor returns the mean color of rect within img as #rrggbb.
func AverageColor(img image.Image, rect image.Rectangle) (string, error) {
	area := rect.Intersect(img.Bounds())
	if area.Empty() {
		return "", errRegionOutside
	}

	var r, g, b, n uint64
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			b += uint64(cb >> 8)
			n++
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", (r+n/2)/n, (g+n/2)/n, (b+n/2)/n), nil
}
