package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"recipe-finder/internal/core/detection"
	"recipe-finder/internal/core/nutrition"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DetectRequest 圖片辨識請求；image 為 data URI、base64 或 URL
type DetectRequest struct {
	Image  string `json:"image" binding:"required"`
	Search bool   `json:"search,omitempty"` // 辨識後直接以食材搜尋
}

// DetectResponse 圖片辨識回應
type DetectResponse struct {
	*detection.Result
	Search *recipe.SearchResult `json:"search,omitempty"`
}

// LabelsRequest 直接轉換偵測結果
type LabelsRequest struct {
	Predictions []detection.Prediction `json:"predictions"`
	Threshold   *float64               `json:"threshold,omitempty"`
}

// NutritionRequest 營養估算請求
type NutritionRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
}

// DetectHandler 食材辨識處理器
type DetectHandler struct {
	detector  *detection.Service
	workspace *recipe.Workspace
}

// NewDetectHandler 創建食材辨識處理器
func NewDetectHandler(detector *detection.Service, workspace *recipe.Workspace) *DetectHandler {
	return &DetectHandler{detector: detector, workspace: workspace}
}

// Detect POST /detect
func (h *DetectHandler) Detect(c *gin.Context) {
	var req DetectRequest
	if !bindJSON(c, &req) {
		return
	}

	common.LogInfo("開始處理食材辨識請求",
		zap.String("request_id", requestid.Get(c)),
		zap.String("image_type", getImageType(req.Image)),
		zap.Int("image_length", len(req.Image)),
	)

	result, err := h.detector.Detect(c.Request.Context(), req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := DetectResponse{Result: result}
	if req.Search && len(result.Ingredients) > 0 {
		query := strings.Join(detection.Names(result.Ingredients), ",")
		res, err := h.workspace.Search(c.Request.Context(), query)
		var noResults *recipe.NoResultsError
		switch {
		case errors.As(err, &noResults):
			resp.Search = &recipe.SearchResult{Query: query, Recipes: []recipe.Record{}}
		case err != nil:
			respondError(c, err)
			return
		default:
			resp.Search = res
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Labels POST /detect/labels
func (h *DetectHandler) Labels(c *gin.Context) {
	var req LabelsRequest
	if !bindJSON(c, &req) {
		return
	}
	threshold := h.detector.Threshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	c.JSON(http.StatusOK, gin.H{
		"ingredients": detection.MapPredictions(req.Predictions, threshold),
	})
}

// getImageType 判斷圖片資料類型（用於日誌記錄）
func getImageType(image string) string {
	switch {
	case image == "":
		return "empty"
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"):
		return "url"
	case strings.HasPrefix(image, "data:image/"):
		parts := strings.SplitN(image, ";base64,", 2)
		if len(parts) == 2 {
			return "base64_data_uri_" + strings.TrimPrefix(parts[0], "data:image/")
		}
		return "invalid_data_uri"
	}
	if _, err := base64.StdEncoding.DecodeString(image); err == nil {
		return "base64"
	}
	return "unknown_format"
}

// NutritionHandler 營養查詢處理器
type NutritionHandler struct {
	nutrition *nutrition.Service
}

// NewNutritionHandler 創建營養查詢處理器
func NewNutritionHandler(svc *nutrition.Service) *NutritionHandler {
	return &NutritionHandler{nutrition: svc}
}

// Search GET /nutrition/search?q=
func (h *NutritionHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		respondError(c, common.NewValidationError("q is required"))
		return
	}
	facts, err := h.nutrition.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, facts)
}

// Estimate POST /nutrition/estimate
func (h *NutritionHandler) Estimate(c *gin.Context) {
	var req NutritionRequest
	if !bindJSON(c, &req) {
		return
	}
	est, err := h.nutrition.Estimate(c.Request.Context(), req.Ingredients)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}
