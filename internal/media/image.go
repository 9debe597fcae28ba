package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"mime"
	"strings"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	MasterMaxSize = 2048
	ThumbMaxSize  = 256
	JPEGQuality   = 82
	WebPQuality   = 70
)

// ErrInvalidImage marks an upload rejected before any storage write: an
// unsupported content type or a payload that does not decode.
var ErrInvalidImage = errors.New("invalid image")

// ImageVariant is one encoded rendition of an uploaded image.
type ImageVariant struct {
	Name string // "master" or "thumb"
	Ext  string // "webp" or "jpg"
	Data []byte
}

// ProcessImage validates and decodes an upload, then produces the webp
// master/thumb variants plus a jpeg master fallback for clients without
// webp support.
func ProcessImage(content []byte, contentType string) ([]ImageVariant, error) {
	if !isAllowedImageMIME(contentType) {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrInvalidImage, contentType)
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if !isSupportedDecodedFormat(format) {
		return nil, fmt.Errorf("%w: unsupported image format %q", ErrInvalidImage, format)
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
	thumb := resizeToFit(decoded, ThumbMaxSize, ThumbMaxSize)

	masterWebP, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return nil, err
	}
	thumbWebP, err := encodeWebP(thumb, WebPQuality)
	if err != nil {
		return nil, err
	}
	masterJPEG, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, err
	}

	return []ImageVariant{
		{Name: "master", Ext: "webp", Data: masterWebP},
		{Name: "thumb", Ext: "webp", Data: thumbWebP},
		{Name: "master", Ext: "jpg", Data: masterJPEG},
	}, nil
}

// ContentHash builds the deterministic storage key for an upload.
func ContentHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
