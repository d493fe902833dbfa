// Package layout holds the geometry helpers shared by the PDF builders and
// print views.
package layout

// Rect is a placed rectangle in the coordinate space of the target page.
type Rect struct {
	X, Y, W, H float64
}

// FitRect scales a source of size w×h to fit inside maxW×maxH without
// distorting the aspect ratio, and centers the result. Sources already
// within the bounds are not enlarged.
func FitRect(w, h, maxW, maxH float64) Rect {
	if w <= 0 || h <= 0 {
		return Rect{}
	}

	scale := 1.0
	if w > maxW || h > maxH {
		sx := maxW / w
		sy := maxH / h
		scale = sx
		if sy < sx {
			scale = sy
		}
	}

	fw := w * scale
	fh := h * scale
	return Rect{
		X: (maxW - fw) / 2,
		Y: (maxH - fh) / 2,
		W: fw,
		H: fh,
	}
}
