package media

import (
	"bytes"
	"errors"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
)

var ErrUnknownType = errors.New("unknown media type")

type SniffResult struct {
	Type MediaType
	MIME string
}

// DetectHead classifies an upload by magic bytes. Only decodable raster
// formats are accepted; everything gets re-encoded to PNG downstream anyway.
func DetectHead(head []byte) (SniffResult, error) {
	if len(head) == 0 {
		return SniffResult{}, ErrUnknownType
	}

	if isJPEG(head) {
		return SniffResult{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	}
	if isPNG(head) {
		return SniffResult{Type: TypePNG, MIME: "image/png"}, nil
	}
	if isGIF(head) {
		return SniffResult{Type: TypeGIF, MIME: "image/gif"}, nil
	}

	return SniffResult{}, ErrUnknownType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}
