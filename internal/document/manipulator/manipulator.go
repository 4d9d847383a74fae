package manipulator

import (
	"bytes"
	"image"
	"io"
	"io/ioutil"

	"github.com/denismitr/redactor/internal/filetype"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/exif"
)

var ErrTransformationFailed = errors.New("manipulator transformation failed")
var ErrBadImage = errors.New("manipulator bad image provided")
var ErrUnsupportedType = errors.New("manipulator unsupported file type")

// maximum distance into image to look for EXIF tags
const maxExifSize = 1 << 20

// maximum accepted size of a source image
const maxImageSize = 50 << 20

const DefaultQuality = 100

type Config struct {
	// zero means no limit
	MaxWidth  int
	MaxHeight int

	JPEGQuality int
}

type Result struct {
	Width    int
	Height   int
	Size     int
	Oriented bool
	Resized  bool
}

// Manipulator prepares image eligible documents for image redaction:
// upright orientation, bounded dimensions, same format as the source.
type Manipulator struct {
	cfg *Config
}

func New(cfg *Config) *Manipulator {
	if cfg == nil {
		cfg = &Config{}
	}

	return &Manipulator{cfg: cfg}
}

func (m *Manipulator) Prepare(source io.Reader, dst io.Writer, ft filetype.FileType) (*Result, error) {
	if !filetype.IsSupportedImageType(ft) {
		return nil, errors.Wrapf(ErrUnsupportedType, "%s can not be prepared for image redaction", ft)
	}

	raw, err := ioutil.ReadAll(io.LimitReader(source, maxImageSize+1))
	if err != nil {
		return nil, errors.Wrapf(ErrBadImage, "could not read source: %v", err)
	}

	if len(raw) > maxImageSize {
		return nil, errors.Wrapf(ErrBadImage, "source exceeds %d bytes", maxImageSize)
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(ErrBadImage, err.Error())
	}

	var result Result

	if ft == filetype.JPG || ft == filetype.JPEG {
		t := ComputeOrientation(io.LimitReader(bytes.NewReader(raw), maxExifSize))
		if t != nil && !t.None() {
			img = applyTransformationOn(img, t)
			result.Oriented = true
		}
	}

	if m.exceedsBoundaries(img) {
		img = imaging.Fit(img, m.maxWidth(img), m.maxHeight(img), imaging.Lanczos)
		result.Resized = true
	}

	buf := &bytes.Buffer{}
	if err := m.encode(buf, img, ft); err != nil {
		return nil, err
	}

	n, err := io.Copy(dst, buf)
	if err != nil {
		return nil, errors.Wrapf(ErrTransformationFailed, "could not copy bytes to dst; %v", err)
	}

	result.Width = img.Bounds().Dx()
	result.Height = img.Bounds().Dy()
	result.Size = int(n)

	return &result, nil
}

// ComputeOrientation reads the EXIF orientation tag, nil when absent or invalid
func ComputeOrientation(r io.Reader) *Transformation {
	exf, err := exif.Decode(r)
	if err != nil {
		return nil
	}

	tag, err := exf.Get(exif.Orientation)
	if err != nil {
		return nil
	}

	orient, err := tag.Int(0)
	if err != nil {
		return nil
	}

	return transformationFromOrientation(orient)
}

func (m *Manipulator) encode(dst io.Writer, img image.Image, ft filetype.FileType) error {
	switch ft {
	case filetype.JPG, filetype.JPEG:
		quality := m.cfg.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = DefaultQuality
		}

		if err := imaging.Encode(dst, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return errors.Wrapf(ErrTransformationFailed, "could not encode image to jpeg %v", err)
		}
	case filetype.PNG:
		if err := imaging.Encode(dst, img, imaging.PNG); err != nil {
			return errors.Wrapf(ErrTransformationFailed, "could not encode image to png %v", err)
		}
	default:
		panic("how can a non image type reach the encoder")
	}

	return nil
}

func (m *Manipulator) exceedsBoundaries(img image.Image) bool {
	return img.Bounds().Dx() > m.maxWidth(img) || img.Bounds().Dy() > m.maxHeight(img)
}

func (m *Manipulator) maxWidth(img image.Image) int {
	if m.cfg.MaxWidth <= 0 {
		return img.Bounds().Dx()
	}

	return m.cfg.MaxWidth
}

func (m *Manipulator) maxHeight(img image.Image) int {
	if m.cfg.MaxHeight <= 0 {
		return img.Bounds().Dy()
	}

	return m.cfg.MaxHeight
}

func applyTransformationOn(img image.Image, t *Transformation) image.Image {
	if t.Flip.Horizontal {
		img = imaging.FlipH(img)
	}

	if t.Flip.Vertical {
		img = imaging.FlipV(img)
	}

	switch t.Rotation {
	case Rotate90:
		img = imaging.Rotate90(img)
	case Rotate180:
		img = imaging.Rotate180(img)
	case Rotate270:
		img = imaging.Rotate270(img)
	}

	return img
}
