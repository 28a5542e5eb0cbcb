package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"net/http"
	"path"
	"slices"

	"github.com/cmlabs-hris/guardops-backend/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	// Photos above this size are downscaled and re-encoded as JPEG.
	compressThreshold = 1 << 20
	maxImageEdge      = 2000
	jpegQuality       = 82
)

type FileService interface {
	// UploadReceipt stores a receipt for an expense item and returns its storage key.
	UploadReceipt(ctx context.Context, tenantID, reportID, itemID string, file io.Reader, opts storage.UploadOptions) (string, error)
	DeleteFile(ctx context.Context, path string) error
	URL(path string) string
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// UploadReceipt sniffs the real content type, enforces opts and shrinks large photos.
func (s *fileServiceImpl) UploadReceipt(ctx context.Context, tenantID, reportID, itemID string, file io.Reader, opts storage.UploadOptions) (string, error) {
	reader := file
	if opts.MaxSize > 0 {
		reader = io.LimitReader(file, opts.MaxSize+1)
	}
	buffer, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read receipt: %w", err)
	}
	if opts.MaxSize > 0 && int64(len(buffer)) > opts.MaxSize {
		return "", storage.ErrFileTooLarge
	}

	contentType := http.DetectContentType(buffer)
	if len(opts.AllowedContentTypes) > 0 && !slices.Contains(opts.AllowedContentTypes, contentType) {
		return "", fmt.Errorf("%w: %s", storage.ErrContentTypeDeny, contentType)
	}

	if (contentType == "image/jpeg" || contentType == "image/png") && len(buffer) > compressThreshold {
		compressed, err := compressImage(buffer, maxImageEdge, jpegQuality)
		if err != nil {
			return "", fmt.Errorf("failed to compress receipt: %w", err)
		}
		buffer, contentType = compressed, "image/jpeg"
	}

	key := path.Join("receipts", tenantID, reportID, fmt.Sprintf("%s-%s%s", itemID, uuid.NewString(), extension(contentType)))
	uploaded, err := s.storage.Upload(ctx, bytes.NewReader(buffer), key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}
	return uploaded, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

func (s *fileServiceImpl) URL(path string) string {
	return s.storage.URL(path)
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}

// compressImage re-encodes buffer as JPEG, scaling it down so its longest edge is at most maxEdge.
func compressImage(buffer []byte, maxEdge, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if longest := max(width, height); longest > maxEdge {
		width = width * maxEdge / longest
		height = height * maxEdge / longest
		img = resizeImage(img, max(width, 1), max(height, 1))
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// Use CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
