package diffusion

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Image is a generated image with its decoded dimensions.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Resolution returns the image size as "WxH".
func (i *Image) Resolution() string {
	return fmt.Sprintf("%dx%d", i.Width, i.Height)
}

// DecodeBounds reads the dimensions of a PNG or JPEG image without
// decoding the pixel data.
func DecodeBounds(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Thumbnail scales the image down so its width is at most maxWidth,
// preserving aspect ratio, and re-encodes it as PNG. Images already within
// the bound are returned unchanged.
func Thumbnail(data []byte, maxWidth int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= maxWidth {
		return data, nil
	}

	scale := float64(maxWidth) / float64(bounds.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, int(float64(bounds.Dy())*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
