package manipulator

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/denismitr/redactor/internal/filetype"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var marker = color.NRGBA{R: 255, A: 255}

// 4x2 white image with a red pixel in the top left corner
func markedImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, color.White)
		}
	}

	img.Set(0, 0, marker)

	return img
}

func encodePng(t *testing.T, img image.Image) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))

	return buf
}

func encodeJpeg(t *testing.T, img image.Image) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}))

	return buf
}

func markerAt(img image.Image) (int, int) {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			r, g, _, _ := img.At(x, y).RGBA()
			if r == 0xffff && g == 0 {
				return x - b.Min.X, y - b.Min.Y
			}
		}
	}

	return -1, -1
}

func Test_transformationFromOrientation(t *testing.T) {
	tt := []struct {
		orient  int
		width   int
		height  int
		markerX int
		markerY int
	}{
		{orient: topLeftSide, width: 4, height: 2, markerX: 0, markerY: 0},
		{orient: topRightSide, width: 4, height: 2, markerX: 3, markerY: 0},
		{orient: bottomRightSide, width: 4, height: 2, markerX: 3, markerY: 1},
		{orient: bottomLeftSide, width: 4, height: 2, markerX: 0, markerY: 1},
		{orient: leftSideTop, width: 2, height: 4, markerX: 0, markerY: 0},
		{orient: rightSideTop, width: 2, height: 4, markerX: 1, markerY: 0},
		{orient: rightSideBottom, width: 2, height: 4, markerX: 1, markerY: 3},
		{orient: leftSideBottom, width: 2, height: 4, markerX: 0, markerY: 3},
	}

	for _, tc := range tt {
		t.Run(fmt.Sprintf("orientation %d", tc.orient), func(t *testing.T) {
			tr := transformationFromOrientation(tc.orient)
			require.NotNil(t, tr)

			result := applyTransformationOn(markedImage(), tr)

			assert.Equal(t, tc.width, result.Bounds().Dx())
			assert.Equal(t, tc.height, result.Bounds().Dy())
			assert.Equal(t, tc.width != 4, tr.SwapsDimensions())

			x, y := markerAt(result)
			assert.Equal(t, tc.markerX, x)
			assert.Equal(t, tc.markerY, y)
		})
	}

	for _, orient := range []int{0, 9, -1} {
		t.Run(fmt.Sprintf("invalid orientation %d", orient), func(t *testing.T) {
			assert.Nil(t, transformationFromOrientation(orient))
		})
	}

	assert.True(t, transformationFromOrientation(topLeftSide).None())
}

func TestManipulator_Prepare(t *testing.T) {
	t.Run("it re-encodes png as png keeping dimensions", func(t *testing.T) {
		m := New(&Config{})
		dst := &bytes.Buffer{}

		r, err := m.Prepare(encodePng(t, markedImage()), dst, filetype.PNG)
		require.NoError(t, err)

		assert.Equal(t, 4, r.Width)
		assert.Equal(t, 2, r.Height)
		assert.Equal(t, dst.Len(), r.Size)
		assert.False(t, r.Oriented)
		assert.False(t, r.Resized)

		_, format, err := image.Decode(dst)
		require.NoError(t, err)
		assert.Equal(t, "png", format)
	})

	t.Run("it re-encodes jpeg without exif as jpeg", func(t *testing.T) {
		m := New(&Config{JPEGQuality: 80})
		dst := &bytes.Buffer{}

		r, err := m.Prepare(encodeJpeg(t, markedImage()), dst, filetype.JPG)
		require.NoError(t, err)

		assert.False(t, r.Oriented)
		assert.Equal(t, 4, r.Width)

		_, format, err := image.Decode(dst)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
	})

	t.Run("it downscales images exceeding the configured boundaries", func(t *testing.T) {
		m := New(&Config{MaxWidth: 2})
		dst := &bytes.Buffer{}

		r, err := m.Prepare(encodePng(t, markedImage()), dst, filetype.PNG)
		require.NoError(t, err)

		assert.True(t, r.Resized)
		assert.Equal(t, 2, r.Width)
		assert.Equal(t, 1, r.Height)
	})

	t.Run("it rejects pdf", func(t *testing.T) {
		m := New(nil)

		r, err := m.Prepare(strings.NewReader("%PDF-1.4"), &bytes.Buffer{}, filetype.PDF)
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, ErrUnsupportedType))
	})

	t.Run("it rejects undecodable images", func(t *testing.T) {
		m := New(nil)

		r, err := m.Prepare(strings.NewReader("definitely not a png"), &bytes.Buffer{}, filetype.PNG)
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, ErrBadImage))
	})
}

func TestComputeOrientation_NoExif(t *testing.T) {
	assert.Nil(t, ComputeOrientation(encodeJpeg(t, markedImage())))
	assert.Nil(t, ComputeOrientation(strings.NewReader("")))
}

// withExifOrientation inserts an APP1 segment with a single orientation tag right after SOI
func withExifOrientation(t *testing.T, jpg []byte, orient uint16) []byte {
	t.Helper()
	require.True(t, len(jpg) > 2 && jpg[0] == 0xFF && jpg[1] == 0xD8)

	tiff := []byte{
		'M', 'M', 0x00, 0x2A, // big endian header
		0x00, 0x00, 0x00, 0x08, // IFD0 offset
		0x00, 0x01, // one entry
		0x01, 0x12, // orientation tag
		0x00, 0x03, // SHORT
		0x00, 0x00, 0x00, 0x01, // count
		byte(orient >> 8), byte(orient), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}

	payload := append([]byte("Exif\x00\x00"), tiff...)
	segmentLen := len(payload) + 2

	out := []byte{0xFF, 0xD8, 0xFF, 0xE1, byte(segmentLen >> 8), byte(segmentLen)}
	out = append(out, payload...)

	return append(out, jpg[2:]...)
}

// 4x2 white image with a black pixel in the top left corner
func darkMarkedImage() *image.NRGBA {
	img := markedImage()
	img.Set(0, 0, color.Black)

	return img
}

func darkestAt(img image.Image) (int, int) {
	b := img.Bounds()
	bx, by, lowest := -1, -1, uint32(0xffff*3+1)
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if sum := r + g + bl; sum < lowest {
				bx, by, lowest = x-b.Min.X, y-b.Min.Y, sum
			}
		}
	}

	return bx, by
}

func TestManipulator_Prepare_ExifOrientation(t *testing.T) {
	source := withExifOrientation(t, encodeJpeg(t, darkMarkedImage()).Bytes(), rightSideTop)

	t.Run("orientation is read from exif", func(t *testing.T) {
		tr := ComputeOrientation(bytes.NewReader(source))
		require.NotNil(t, tr)
		assert.True(t, tr.SwapsDimensions())
	})

	for _, ft := range []filetype.FileType{filetype.JPEG, filetype.JPG} {
		t.Run(fmt.Sprintf("it straightens %s", ft), func(t *testing.T) {
			m := New(&Config{JPEGQuality: 95})
			dst := &bytes.Buffer{}

			r, err := m.Prepare(bytes.NewReader(source), dst, ft)
			require.NoError(t, err)

			assert.True(t, r.Oriented)
			assert.False(t, r.Resized)
			assert.Equal(t, 2, r.Width)
			assert.Equal(t, 4, r.Height)
			assert.Equal(t, dst.Len(), r.Size)

			img, format, err := image.Decode(dst)
			require.NoError(t, err)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, 2, img.Bounds().Dx())
			assert.Equal(t, 4, img.Bounds().Dy())

			x, y := darkestAt(img)
			assert.Equal(t, 1, x)
			assert.Equal(t, 0, y)
		})
	}

	t.Run("exif of a png is ignored", func(t *testing.T) {
		m := New(nil)

		r, err := m.Prepare(encodePng(t, markedImage()), &bytes.Buffer{}, filetype.PNG)
		require.NoError(t, err)
		assert.False(t, r.Oriented)
	})
}
