package handlers

import (
	"errors"
	"net/http"

	"recipe-finder/internal/core/history"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoResultsResponse 無結果回應，附帶替代搜尋建議
type NoResultsResponse struct {
	Error       string             `json:"error"`
	Code        string             `json:"code"`
	Query       string             `json:"query"`
	Suggestions recipe.Suggestions `json:"suggestions"`
}

// OverrideResponse 覆寫結果
type OverrideResponse struct {
	ID      string `json:"idMeal"`
	Applied bool   `json:"applied"`
}

// RecipeHandler 食譜搜尋與結果集處理器
type RecipeHandler struct {
	workspace *recipe.Workspace
	history   *history.Service
}

// NewRecipeHandler 創建食譜處理器
func NewRecipeHandler(workspace *recipe.Workspace, historySvc *history.Service) *RecipeHandler {
	return &RecipeHandler{
		workspace: workspace,
		history:   historySvc,
	}
}

// Search GET /recipes/search?q=
func (h *RecipeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	common.LogInfo("開始處理食譜搜尋",
		zap.String("request_id", requestid.Get(c)),
		zap.String("query", query),
	)

	res, err := h.workspace.Search(c.Request.Context(), query)
	h.respondSearch(c, res, err)
}

// SearchByCategory GET /recipes/category/:name
func (h *RecipeHandler) SearchByCategory(c *gin.Context) {
	res, err := h.workspace.SearchByCategory(c.Request.Context(), c.Param("name"))
	h.respondSearch(c, res, err)
}

// SearchByArea GET /recipes/area/:name
func (h *RecipeHandler) SearchByArea(c *gin.Context) {
	res, err := h.workspace.SearchByArea(c.Request.Context(), c.Param("name"))
	h.respondSearch(c, res, err)
}

// SearchByPantry POST /pantry/search
func (h *RecipeHandler) SearchByPantry(c *gin.Context) {
	res, err := h.workspace.SearchByPantry(c.Request.Context())
	h.respondSearch(c, res, err)
}

func (h *RecipeHandler) respondSearch(c *gin.Context, res *recipe.SearchResult, err error) {
	var noResults *recipe.NoResultsError
	if errors.As(err, &noResults) {
		c.JSON(http.StatusNotFound, NoResultsResponse{
			Error:       recipe.NoResultsMessage,
			Code:        common.ErrNoRecipes.Code,
			Query:       noResults.Query,
			Suggestions: noResults.Suggestions,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("食譜搜尋完成",
		zap.String("request_id", requestid.Get(c)),
		zap.String("query", res.Query),
		zap.Int("count", len(res.Recipes)),
		zap.Bool("ranked", res.Ranked),
	)
	c.JSON(http.StatusOK, res)
}

// List GET /recipes 目前結果集
func (h *RecipeHandler) List(c *gin.Context) {
	filter, err := dietFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	h.trackFilter(c, filter)
	c.JSON(http.StatusOK, h.workspace.Results(filter))
}

// trackFilter 記錄使用中的飲食篩選
func (h *RecipeHandler) trackFilter(c *gin.Context, f recipe.DietFilter) {
	if h.history == nil {
		return
	}
	ctx := c.Request.Context()
	if f.Vegetarian {
		h.history.TrackQuietly(ctx, history.ActionDietaryFilter, history.DietVegetarian)
	}
	if f.Vegan {
		h.history.TrackQuietly(ctx, history.ActionDietaryFilter, history.DietVegan)
	}
	if f.GlutenFree {
		h.history.TrackQuietly(ctx, history.ActionDietaryFilter, history.DietGlutenFree)
	}
}

// Details GET /recipes/:id
func (h *RecipeHandler) Details(c *gin.Context) {
	detail, err := h.workspace.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Override PATCH /recipes/:id/override
func (h *RecipeHandler) Override(c *gin.Context) {
	id := c.Param("id")

	var partial recipe.UserOverride
	if err := c.ShouldBindJSON(&partial); err != nil {
		if errors.Is(err, recipe.ErrUnknownTag) {
			respondError(c, err)
			return
		}
		respondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	if partial.IsEmpty() {
		respondError(c, common.NewValidationError("override must set at least one tag"))
		return
	}

	applied, err := h.workspace.ApplyOverride(c.Request.Context(), id, partial)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("標籤覆寫",
		zap.String("request_id", requestid.Get(c)),
		zap.String("id", id),
		zap.Bool("applied", applied),
	)
	c.JSON(http.StatusOK, OverrideResponse{ID: id, Applied: applied})
}

// Categories GET /meta/categories
func (h *RecipeHandler) Categories(c *gin.Context) {
	cats, err := h.workspace.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// Areas GET /meta/areas
func (h *RecipeHandler) Areas(c *gin.Context) {
	areas, err := h.workspace.Areas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"areas": areas})
}
