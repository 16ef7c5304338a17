package imaging

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// ErrUndecodable is returned when bytes that claim to be an image cannot be decoded
var ErrUndecodable = errors.New("image could not be decoded")

// Config for image processing
type Config struct {
	MaxWidth  int // Max width before downscaling (default 2000)
	MaxHeight int // Max height before downscaling (default 2000)
	Quality   int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:  2000,
		MaxHeight: 2000,
		Quality:   85,
	}
}

// Result is the processed image
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Resized     bool
}

// Processor handles image processing
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	if config.MaxWidth <= 0 {
		config.MaxWidth = DefaultConfig().MaxWidth
	}
	if config.MaxHeight <= 0 {
		config.MaxHeight = DefaultConfig().MaxHeight
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = DefaultConfig().Quality
	}
	return &Processor{config: config}
}

// Fit applies EXIF orientation and downscales images larger than the
// configured bounds, keeping the original format. Formats the decoder does not
// know (WebP) are returned untouched.
func (p *Processor) Fit(data []byte, contentType string) (*Result, error) {
	format, ok := formatFromMime(contentType)
	if !ok {
		return &Result{Data: data, ContentType: contentType}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	result := &Result{
		Data:        data,
		ContentType: contentType,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
	}

	if result.Width <= p.config.MaxWidth && result.Height <= p.config.MaxHeight {
		return result, nil
	}

	resized := imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(p.config.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	result.Data = buf.Bytes()
	result.Width = resized.Bounds().Dx()
	result.Height = resized.Bounds().Dy()
	result.Resized = true
	return result, nil
}

func formatFromMime(contentType string) (imaging.Format, bool) {
	switch contentType {
	case "image/jpeg":
		return imaging.JPEG, true
	case "image/png":
		return imaging.PNG, true
	case "image/gif":
		return imaging.GIF, true
	default:
		return 0, false
	}
}
