package render

import (
	"fmt"
	"image"
	"path"

	"github.com/nfnt/resize"
)

// PreviewSizes are the edge lengths of the downsampled preview images.
var PreviewSizes = []uint{128, 256, 512, 1024}

// WritePreviews writes one resized copy of img per preview size into
// dir, named <base>_<size>.png, preserving the aspect ratio. Sizes
// larger than the source are skipped rather than upscaled.
func WritePreviews(img image.Image, dir, base string) ([]string, error) {
	bounds := img.Bounds()
	longEdge := bounds.Dx()
	if bounds.Dy() > longEdge {
		longEdge = bounds.Dy()
	}

	written := []string{}
	for _, size := range PreviewSizes {
		if int(size) > longEdge {
			continue
		}
		var resized image.Image
		if bounds.Dx() >= bounds.Dy() {
			resized = resize.Resize(size, 0, img, resize.MitchellNetravali)
		} else {
			resized = resize.Resize(0, size, img, resize.MitchellNetravali)
		}
		out := path.Join(dir, fmt.Sprintf("%s_%d.png", base, size))
		if err := SavePNG(out, resized); err != nil {
			return written, err
		}
		written = append(written, out)
	}
	return written, nil
}
