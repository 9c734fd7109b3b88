package handlers

import (
	"net/http"

	"recipe-finder/internal/core/favorites"
	"recipe-finder/internal/core/history"
	"recipe-finder/internal/core/mealdb"
	"recipe-finder/internal/core/pantry"
	"recipe-finder/internal/core/recipe"

	"github.com/gin-gonic/gin"
)

// PantryItemRequest 新增庫存項目
type PantryItemRequest struct {
	Item string `json:"item" binding:"required"`
}

// FavoritesHandler 收藏處理器
type FavoritesHandler struct {
	favorites *favorites.Service
	workspace *recipe.Workspace
}

// NewFavoritesHandler 創建收藏處理器
func NewFavoritesHandler(favs *favorites.Service, workspace *recipe.Workspace) *FavoritesHandler {
	return &FavoritesHandler{favorites: favs, workspace: workspace}
}

// List GET /favorites
func (h *FavoritesHandler) List(c *gin.Context) {
	filter, err := dietFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := h.workspace.Favorites(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": list})
}

// Toggle POST /favorites
func (h *FavoritesHandler) Toggle(c *gin.Context) {
	var meal mealdb.MealStub
	if !bindJSON(c, &meal) {
		return
	}
	added, list, err := h.favorites.Toggle(c.Request.Context(), meal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "favorites": list})
}

// Remove DELETE /favorites/:id
func (h *FavoritesHandler) Remove(c *gin.Context) {
	list, err := h.favorites.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": list})
}

// Enrich POST /favorites/enrich
func (h *FavoritesHandler) Enrich(c *gin.Context) {
	list, n, err := h.favorites.EnrichMissing(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enriched": n, "favorites": list})
}

// PantryHandler 庫存處理器
type PantryHandler struct {
	pantry *pantry.Service
}

// NewPantryHandler 創建庫存處理器
func NewPantryHandler(svc *pantry.Service) *PantryHandler {
	return &PantryHandler{pantry: svc}
}

// List GET /pantry
func (h *PantryHandler) List(c *gin.Context) {
	items, err := h.pantry.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Add POST /pantry
func (h *PantryHandler) Add(c *gin.Context) {
	var req PantryItemRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := h.pantry.Add(c.Request.Context(), req.Item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Remove DELETE /pantry/:item
func (h *PantryHandler) Remove(c *gin.Context) {
	items, err := h.pantry.Remove(c.Request.Context(), c.Param("item"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Clear DELETE /pantry
func (h *PantryHandler) Clear(c *gin.Context) {
	if err := h.pantry.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": []string{}})
}

// HistoryHandler 搜尋紀錄處理器
type HistoryHandler struct {
	history *history.Service
}

// NewHistoryHandler 創建搜尋紀錄處理器
func NewHistoryHandler(svc *history.Service) *HistoryHandler {
	return &HistoryHandler{history: svc}
}

// Recent GET /history/recent
func (h *HistoryHandler) Recent(c *gin.Context) {
	recent, err := h.history.Recent(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": recent})
}

// Recommendations GET /history/recommendations
func (h *HistoryHandler) Recommendations(c *gin.Context) {
	ctx := c.Request.Context()
	rec, err := h.history.Recommendations(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	msg, err := h.history.PersonalizedMessage(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": rec, "message": msg})
}

// Clear DELETE /history
func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
