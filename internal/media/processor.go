// Package media validates uploaded photos, produces the resized image and
// its thumbnail, and hands both to a Storage backend.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/subosito/gozaru"
)

const (
	MaxDimension   = 2000
	ThumbnailSize  = 200
	jpegQuality    = 85
	sniffLen       = 512
	defaultMaxSize = 10 * 1024 * 1024
)

var (
	ErrUnsupportedType = errors.New("only JPEG and PNG images are accepted")
	ErrTooLarge        = errors.New("file too large")
	ErrEmpty           = errors.New("file is empty")
)

// Image is a processed upload ready to be stored.
type Image struct {
	Data        []byte
	Thumbnail   []byte
	Width       int
	Height      int
	ContentType string
	Ext         string
}

type Processor struct {
	maxBytes int64
}

func NewProcessor(maxBytes int64) *Processor {
	if maxBytes <= 0 {
		maxBytes = defaultMaxSize
	}
	return &Processor{maxBytes: maxBytes}
}

func (p *Processor) MaxBytes() int64 {
	return p.maxBytes
}

// Check rejects uploads over the size limit before they are read.
func (p *Processor) Check(size int64) error {
	if size <= 0 {
		return ErrEmpty
	}
	if size > p.maxBytes {
		return fmt.Errorf("%w: maximum size is %s", ErrTooLarge, humanize.IBytes(uint64(p.maxBytes)))
	}
	return nil
}

// Process sniffs the real content type, shrinks the image to fit within
// MaxDimension and renders a square centre-cropped thumbnail.
func (p *Processor) Process(raw []byte) (*Image, error) {
	if err := p.Check(int64(len(raw))); err != nil {
		return nil, err
	}

	sniff := raw
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}

	var (
		format imaging.Format
		ext    string
	)
	contentType := http.DetectContentType(sniff)
	switch contentType {
	case "image/jpeg":
		format, ext = imaging.JPEG, ".jpg"
	case "image/png":
		format, ext = imaging.PNG, ".png"
	default:
		return nil, ErrUnsupportedType
	}

	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}

	resized := imaging.Fit(src, MaxDimension, MaxDimension, imaging.Lanczos)
	thumb := imaging.Fill(src, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)

	var data, thumbData bytes.Buffer
	if err := imaging.Encode(&data, resized, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := imaging.Encode(&thumbData, thumb, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	bounds := resized.Bounds()
	return &Image{
		Data:        data.Bytes(),
		Thumbnail:   thumbData.Bytes(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ContentType: contentType,
		Ext:         ext,
	}, nil
}

// CleanFileName strips path elements and characters that are unsafe in file
// names from a client supplied name.
func CleanFileName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return "photo"
	}
	return gozaru.Sanitize(base)
}
