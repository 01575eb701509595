package avatar

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const (
	// Avatars are stored as a fixed 250x250 center crop.
	Width  = 250
	Height = 250
)

// Normalize decodes an uploaded image, center-crops it to the avatar
// dimensions and re-encodes it as JPEG.
func Normalize(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode avatar image: %w", err)
	}

	cropped := imaging.Fill(img, Width, Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode avatar image: %w", err)
	}
	return buf.Bytes(), nil
}
