package blob

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"atelier/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	thumbnailMaxSize = 256
	webpQuality      = 70
)

// DiskStore writes blobs under a root directory and serves them from a base
// URL. Each upload gets a uuid public ID; the original bytes are written
// verbatim and images get a webp thumbnail next to them.
type DiskStore struct {
	root     string
	baseURL  string
	maxBytes int64
}

func NewDiskStore(root, baseURL string, maxBytes int64) *DiskStore {
	return &DiskStore{
		root:     root,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}
}

func (s *DiskStore) Save(ctx context.Context, up Upload) (*Stored, error) {
	if len(up.Content) == 0 {
		return nil, ErrEmptyFile
	}
	if s.maxBytes > 0 && int64(len(up.Content)) > s.maxBytes {
		return nil, fmt.Errorf("%w (max %dMB)", ErrTooLarge, s.maxBytes/(1024*1024))
	}

	detected := normalizeContentType(http.DetectContentType(up.Content))
	ext, ok := extensionForType(detected)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, detected)
	}

	decoded, _, err := image.Decode(bytes.NewReader(up.Content))
	if err != nil {
		return nil, ErrNotImage
	}

	publicID := uuid.NewString()
	originalRel := publicID + ext
	thumbRel := publicID + "_thumb.webp"

	if err := writeFile(filepath.Join(s.root, originalRel), up.Content); err != nil {
		observability.BlobOperations.WithLabelValues("save", "error").Inc()
		return nil, err
	}

	thumbBytes, err := encodeThumbnail(decoded)
	if err != nil {
		_ = os.Remove(filepath.Join(s.root, originalRel))
		observability.BlobOperations.WithLabelValues("save", "error").Inc()
		return nil, err
	}
	if err := writeFile(filepath.Join(s.root, thumbRel), thumbBytes); err != nil {
		_ = os.Remove(filepath.Join(s.root, originalRel))
		observability.BlobOperations.WithLabelValues("save", "error").Inc()
		return nil, err
	}

	observability.BlobOperations.WithLabelValues("save", "ok").Inc()
	return &Stored{
		PublicID:     originalRel,
		URL:          s.baseURL + "/" + originalRel,
		ThumbnailURL: s.baseURL + "/" + thumbRel,
	}, nil
}

func (s *DiskStore) Delete(ctx context.Context, publicID string) error {
	// public IDs are uuid-with-extension; anything else never hit the disk
	// and must not reach filepath.Join.
	if publicID == "" || strings.ContainsAny(publicID, "/\\") {
		return nil
	}

	status := "ok"
	if err := os.Remove(filepath.Join(s.root, publicID)); err != nil && !os.IsNotExist(err) {
		status = "error"
	}
	thumb := strings.TrimSuffix(publicID, filepath.Ext(publicID)) + "_thumb.webp"
	if err := os.Remove(filepath.Join(s.root, thumb)); err != nil && !os.IsNotExist(err) {
		status = "error"
	}
	observability.BlobOperations.WithLabelValues("delete", status).Inc()
	return nil
}

func encodeThumbnail(src image.Image) ([]byte, error) {
	resized := resizeToFit(src, thumbnailMaxSize, thumbnailMaxSize)
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, resized, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
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

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
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

func extensionForType(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/webp":
		return ".webp", true
	default:
		return "", false
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

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
