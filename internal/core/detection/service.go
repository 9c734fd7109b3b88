// Package detection 將圖片送往外部物件偵測服務並轉換為食材
package detection

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Result 辨識結果
type Result struct {
	Ingredients    []Ingredient `json:"ingredients"`
	RawPredictions []Prediction `json:"rawPredictions"`
}

// Service 食材辨識服務
type Service struct {
	endpoint  string
	threshold float64
	client    *resty.Client
	images    *ImageService
}

// NewService 創建食材辨識服務；endpoint 為空時 Detect 回傳 ErrDetectorDisabled
func NewService(cfg config.DetectionConfig) *Service {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Service{
		endpoint:  cfg.Endpoint,
		threshold: cfg.ConfidenceThreshold,
		client:    client,
		images:    NewImageService(cfg.MaxSizeBytes, cfg.MaxDimension, client),
	}
}

// Enabled 是否已設定偵測服務
func (s *Service) Enabled() bool {
	return s.endpoint != ""
}

// Threshold 信心門檻
func (s *Service) Threshold() float64 {
	return s.threshold
}

// Detect 處理圖片、呼叫偵測服務並轉換為食材
func (s *Service) Detect(ctx context.Context, imageData string) (*Result, error) {
	if !s.Enabled() {
		return nil, common.ErrDetectorDisabled
	}

	jpegBytes, err := s.images.Process(ctx, imageData)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"image": DataURI(jpegBytes)}).
		Post(s.endpoint)
	common.LogUpstreamCall("detector", s.endpoint, time.Since(start), err)

	if err != nil {
		return nil, common.ErrBadGateway.Wrap(fmt.Errorf("failed to send request to detector: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.ErrBadGateway.Wrap(fmt.Errorf("detector returned status %d", resp.StatusCode()))
	}

	var preds []Prediction
	if err := common.ParseJSONBytes(resp.Body(), &preds); err != nil {
		return nil, common.ErrBadGateway.Wrap(fmt.Errorf("failed to parse detector response: %w", err))
	}

	ingredients := MapPredictions(preds, s.threshold)
	common.LogInfo("食材辨識完成",
		zap.Int("predictions", len(preds)),
		zap.Strings("ingredients", Names(ingredients)),
	)

	return &Result{Ingredients: ingredients, RawPredictions: preds}, nil
}
