package manipulator

// Degrees of counter clockwise rotation
type Degrees int64

const (
	Rotate90  Degrees = 90
	Rotate180 Degrees = 180
	Rotate270 Degrees = 270
)

type Flip struct {
	Horizontal bool
	Vertical   bool
}

func (f Flip) None() bool {
	return !f.Vertical && !f.Horizontal
}

// Transformation brings an image to its upright orientation.
// Flips are applied before the rotation.
type Transformation struct {
	Rotation Degrees
	Flip     Flip
}

func (t *Transformation) None() bool {
	return t.Rotation == 0 && t.Flip.None()
}

// SwapsDimensions reports whether width and height trade places
func (t *Transformation) SwapsDimensions() bool {
	return t.Rotation == Rotate90 || t.Rotation == Rotate270
}

// Exif Orientation Tag values
// http://sylvana.net/jpegcrop/exif_orientation.html
const (
	topLeftSide     = 1
	topRightSide    = 2
	bottomRightSide = 3
	bottomLeftSide  = 4
	leftSideTop     = 5
	rightSideTop    = 6
	rightSideBottom = 7
	leftSideBottom  = 8
)

func transformationFromOrientation(orient int) *Transformation {
	var t Transformation
	switch orient {
	case topLeftSide:
		// skip
	case topRightSide:
		t.Flip.Horizontal = true
	case bottomRightSide:
		t.Rotation = Rotate180
	case bottomLeftSide:
		t.Flip.Vertical = true
	case leftSideTop:
		t.Flip.Horizontal = true
		t.Rotation = Rotate90
	case rightSideTop:
		t.Rotation = Rotate270
	case rightSideBottom:
		t.Flip.Horizontal = true
		t.Rotation = Rotate270
	case leftSideBottom:
		t.Rotation = Rotate90
	default:
		return nil
	}

	return &t
}
