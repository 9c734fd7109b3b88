package detection

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// ImageService 圖片處理服務：讀取、驗證、縮放並轉為 JPEG
type ImageService struct {
	maxSizeBytes int64
	maxDimension uint
	client       *resty.Client
}

// NewImageService 創建新的圖片處理服務
func NewImageService(maxSizeBytes int64, maxDimension uint, client *resty.Client) *ImageService {
	return &ImageService{
		maxSizeBytes: maxSizeBytes,
		maxDimension: maxDimension,
		client:       client,
	}
}

// Process 接受 data URI 或 http(s) URL，回傳縮放後的 JPEG
func (s *ImageService) Process(ctx context.Context, imageData string) ([]byte, error) {
	raw, err := s.load(ctx, imageData)
	if err != nil {
		return nil, err
	}

	// 檢查文件大小
	if int64(len(raw)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.Wrap(
			fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}

	// 解碼圖片
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}

	// 檢查圖片格式
	if !isSupportedFormat(format) {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	img = s.fit(img)

	// 將圖片轉換為 JPEG 格式
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// load 取得原始位元組
func (s *ImageService) load(ctx context.Context, imageData string) ([]byte, error) {
	// 檢查是否為 URL
	if strings.HasPrefix(imageData, "http://") || strings.HasPrefix(imageData, "https://") {
		resp, err := s.client.R().SetContext(ctx).Get(imageData)
		if err != nil {
			return nil, fmt.Errorf("failed to download image: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, common.ErrInvalidImageFormat.Wrap(
				fmt.Errorf("failed to download image: status code %d", resp.StatusCode()))
		}
		return resp.Body(), nil
	}

	// 處理 base64 格式
	if !strings.HasPrefix(imageData, "data:image/") {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("invalid image data format"))
	}

	parts := strings.SplitN(imageData, ",", 2)
	if len(parts) != 2 {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("invalid base64 data format"))
	}

	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	return decoded, nil
}

// fit 長邊超過 maxDimension 時等比例縮小
func (s *ImageService) fit(img image.Image) image.Image {
	if s.maxDimension == 0 {
		return img
	}

	b := img.Bounds()
	w, h := uint(b.Dx()), uint(b.Dy())
	if w <= s.maxDimension && h <= s.maxDimension {
		return img
	}
	if w >= h {
		return resize.Resize(s.maxDimension, 0, img, resize.Lanczos3)
	}
	return resize.Resize(0, s.maxDimension, img, resize.Lanczos3)
}

// DataURI 將 JPEG 編碼為 data URI
func DataURI(jpegBytes []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegBytes)
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
