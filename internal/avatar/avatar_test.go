package avatar

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestNormalizeCropsToFixedSize(t *testing.T) {
	for _, dims := range [][2]int{{640, 480}, {480, 640}, {100, 100}} {
		src := encodePNG(t, dims[0], dims[1])

		data, err := Normalize(src)
		require.NoError(t, err)

		decoded, err := jpeg.Decode(bytes.NewReader(data))
		require.NoError(t, err)

		bounds := decoded.Bounds()
		assert.Equal(t, Width, bounds.Dx())
		assert.Equal(t, Height, bounds.Dy())
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize(strings.NewReader("definitely not an image"))
	assert.Error(t, err)
}
