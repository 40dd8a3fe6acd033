package media

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// used when SVG viewBox has no size
const defaultSVGSize = 1024

// maxRasterDim limits either side of rasterized SVG. Enormous viewBox would
// otherwise allocate gigabytes for the RGBA buffer.
var maxRasterDim = 8192

// rasterizeSVG draws SVG on white background. Image keeps viewBox size unless
// it does not fit into maxW x maxH box, zero means no limit for that side.
func rasterizeSVG(data []byte, maxW, maxH int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w := int(math.Ceil(icon.ViewBox.W))
	h := int(math.Ceil(icon.ViewBox.H))
	if w <= 0 {
		w = defaultSVGSize
	}
	if h <= 0 {
		h = defaultSVGSize
	}
	w, h = fitBox(w, h, maxW, maxH)
	w, h = fitBox(w, h, maxRasterDim, maxRasterDim)

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

// fitBox shrinks w x h keeping aspect ratio until it fits, never enlarges.
func fitBox(w, h, maxW, maxH int) (int, int) {
	s := 1.0
	if maxW > 0 && w > maxW {
		s = min(s, float64(maxW)/float64(w))
	}
	if maxH > 0 && h > maxH {
		s = min(s, float64(maxH)/float64(h))
	}
	if s == 1.0 {
		return w, h
	}
	return max(int(math.Round(float64(w)*s)), 1), max(int(math.Round(float64(h)*s)), 1)
}
