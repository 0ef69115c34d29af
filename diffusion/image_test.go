package diffusion

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// encodePNG renders a solid-color PNG of the given size for tests.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 80, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeBounds(t *testing.T) {
	data := encodePNG(t, 512, 256)

	w, h, err := DecodeBounds(data)
	if err != nil {
		t.Fatalf("DecodeBounds() error: %v", err)
	}
	if w != 512 || h != 256 {
		t.Errorf("bounds = %dx%d, want 512x256", w, h)
	}

	if _, _, err := DecodeBounds([]byte("not an image")); err == nil {
		t.Error("expected error for garbage data")
	}
}

func TestImageResolution(t *testing.T) {
	img := &Image{Width: 512, Height: 512}
	if got := img.Resolution(); got != "512x512" {
		t.Errorf("Resolution() = %q, want %q", got, "512x512")
	}
}

func TestThumbnail(t *testing.T) {
	data := encodePNG(t, 1024, 512)

	thumb, err := Thumbnail(data, 256)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	w, h, err := DecodeBounds(thumb)
	if err != nil {
		t.Fatalf("DecodeBounds(thumb) error: %v", err)
	}
	if w != 256 {
		t.Errorf("thumbnail width = %d, want 256", w)
	}
	if h != 128 {
		t.Errorf("thumbnail height = %d, want 128 (aspect preserved)", h)
	}
}

func TestThumbnailSmallImageUnchanged(t *testing.T) {
	data := encodePNG(t, 200, 100)

	thumb, err := Thumbnail(data, 256)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	if !bytes.Equal(thumb, data) {
		t.Error("small image should be returned unchanged")
	}
}
