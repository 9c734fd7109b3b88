// Package handlers 實作 HTTP API 的請求處理
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"recipe-finder/internal/core/mealdb"
	"recipe-finder/internal/core/nutrition"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// toCustomError 將領域錯誤轉為帶 HTTP 狀態碼的錯誤
func toCustomError(err error) *common.CustomError {
	if ce, ok := common.AsCustomError(err); ok {
		return ce
	}

	switch {
	case common.IsValidationError(err):
		return common.NewError(common.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, recipe.ErrUnknownTag):
		return common.ErrUnknownTag.Wrap(err)
	case errors.Is(err, recipe.ErrNoRecipes):
		return common.ErrNoRecipes.Wrap(err)
	case errors.Is(err, recipe.ErrSuperseded):
		return common.ErrConflict.Wrap(err)
	case errors.Is(err, mealdb.ErrMealNotFound):
		return common.ErrNotFound.Wrap(err)
	case errors.Is(err, mealdb.ErrUpstream):
		return common.ErrBadGateway.Wrap(err)
	case errors.Is(err, nutrition.ErrNoNutritionData):
		return common.ErrNoNutritionData.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.Wrap(err)
	}
	return common.ErrInternalError.Wrap(err)
}

// respondError 記錄錯誤並回傳 {"error","code"}
func respondError(c *gin.Context, err error) {
	ce := toCustomError(err)

	fields := []zap.Field{
		zap.String("request_id", requestid.Get(c)),
		zap.String("path", c.Request.URL.Path),
		zap.String("code", ce.Code),
		zap.Error(err),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	resp := common.ErrorResponse{Error: ce.Message, Code: ce.Code}
	if ce.Code == common.ErrCodeInvalidRequest && ce.Err != nil {
		resp.Error = ce.Err.Error()
	}
	if gin.IsDebugging() && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	c.AbortWithStatusJSON(ce.Status, resp)
}

// bindJSON 解析請求體，失敗時直接回應 400
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, common.ErrInvalidRequest.Wrap(err))
		return false
	}
	return true
}

// queryBool 解析布林查詢參數，未提供時為 false
func queryBool(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, common.NewValidationError("invalid " + name + " value: " + raw)
	}
	return v, nil
}

// dietFilter 由查詢參數組出飲食篩選
func dietFilter(c *gin.Context) (recipe.DietFilter, error) {
	var f recipe.DietFilter
	var err error
	if f.Vegetarian, err = queryBool(c, "vegetarian"); err != nil {
		return f, err
	}
	if f.Vegan, err = queryBool(c, "vegan"); err != nil {
		return f, err
	}
	if f.GlutenFree, err = queryBool(c, "gluten_free"); err != nil {
		return f, err
	}
	return f, nil
}
