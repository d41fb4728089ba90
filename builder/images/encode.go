package images

import (
	"bytes"
	"fmt"
	"image"
	"slices"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
)

// Output formats.
const (
	FormatAVIF = "avif"
	FormatWebP = "webp"
	FormatJPEG = "jpeg"
)

var sourceTypes = map[string]string{
	FormatAVIF: "image/avif",
	FormatWebP: "image/webp",
	FormatJPEG: "image/jpeg",
}

// Quality holds encoder settings per format.
type Quality struct {
	AVIF      int
	AVIFSpeed int
	WebP      int
	JPEG      int
}

func encode(img image.Image, format string, q Quality) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q.JPEG))
	case FormatWebP:
		err = webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: float32(q.WebP)})
	case FormatAVIF:
		err = avif.Encode(&buf, img, avif.Options{Quality: q.AVIF, Speed: q.AVIFSpeed})
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// sourceWidthThreshold is how much wider than the largest kept width a
// source must be before its own width is added as a variant.
const sourceWidthThreshold = 1.25

// resizeWidths keeps the requested widths that do not upscale the source,
// sorted and deduplicated. When a width was skipped the source width is
// added too, provided it is at least sourceWidthThreshold times the largest
// kept width; when none qualify the source width is used alone.
func resizeWidths(requested []int, srcWidth int) []int {
	seen := make(map[int]bool, len(requested))
	var out []int
	skipped := false
	for _, w := range requested {
		if w <= 0 || seen[w] {
			continue
		}
		seen[w] = true
		if w > srcWidth {
			skipped = true
			continue
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return []int{srcWidth}
	}
	slices.Sort(out)
	if largest := out[len(out)-1]; skipped && float64(srcWidth) >= float64(largest)*sourceWidthThreshold {
		out = append(out, srcWidth)
	}
	return out
}
