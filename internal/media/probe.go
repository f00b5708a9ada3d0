package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	"animehost/internal/models"
)

// Orient classifies an image by its pixel dimensions. A payload whose
// header cannot be decoded yields OrientationUnknown rather than an error;
// the upload itself must not fail on a bad metadata read.
func Orient(data []byte) models.Orientation {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.OrientationUnknown
	}

	switch {
	case cfg.Width > cfg.Height:
		return models.OrientationLandscape
	case cfg.Width < cfg.Height:
		return models.OrientationPortrait
	default:
		return models.OrientationSquare
	}
}

// Optimize scales the image down so neither dimension exceeds maxDim,
// preserving aspect ratio and never enlarging, then re-encodes it as PNG.
func Optimize(data []byte, maxDim int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	fitted := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
