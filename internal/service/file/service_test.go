package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/cmlabs-hris/guardops-backend/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var receiptOpts = storage.UploadOptions{
	MaxSize:             5 << 20,
	AllowedContentTypes: []string{"image/jpeg", "image/png", "application/pdf"},
}

func newService(t *testing.T) (FileService, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	return NewFileService(local), local
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadReceipt_StoresUnderReportKey(t *testing.T) {
	svc, local := newService(t)
	ctx := context.Background()

	key, err := svc.UploadReceipt(ctx, "tenant-1", "report-1", "item-1", bytes.NewReader(pngBytes(t, 4, 4)), receiptOpts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "receipts/tenant-1/report-1/item-1-"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	exists, err := local.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "http://localhost:8080/uploads/"+key, svc.URL(key))

	require.NoError(t, svc.DeleteFile(ctx, key))
	exists, err = local.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUploadReceipt_PDF(t *testing.T) {
	svc, _ := newService(t)
	key, err := svc.UploadReceipt(context.Background(), "t", "r", "i", strings.NewReader("%PDF-1.4\n%receipt"), receiptOpts)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".pdf"))
}

func TestUploadReceipt_TooLarge(t *testing.T) {
	svc, _ := newService(t)
	opts := receiptOpts
	opts.MaxSize = 16
	_, err := svc.UploadReceipt(context.Background(), "t", "r", "i", bytes.NewReader(pngBytes(t, 8, 8)), opts)
	assert.ErrorIs(t, err, storage.ErrFileTooLarge)
}

func TestUploadReceipt_RejectsContentType(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.UploadReceipt(context.Background(), "t", "r", "i", strings.NewReader("just some text"), receiptOpts)
	assert.ErrorIs(t, err, storage.ErrContentTypeDeny)
}

func TestUploadReceipt_DownscalesLargePhotos(t *testing.T) {
	svc, local := newService(t)
	ctx := context.Background()

	// Noise keeps the PNG above the compression threshold.
	img := image.NewRGBA(image.Rect(0, 0, 2400, 300))
	rng := rand.New(rand.NewSource(1))
	_, _ = rng.Read(img.Pix)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.Greater(t, buf.Len(), compressThreshold)

	key, err := svc.UploadReceipt(ctx, "t", "r", "i", &buf, receiptOpts)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	rc, err := local.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	decoded, err := jpeg.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, maxImageEdge, decoded.Bounds().Dx())
	assert.Equal(t, 250, decoded.Bounds().Dy())
}
