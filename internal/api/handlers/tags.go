package handlers

import (
	"net/http"

	"recipe-finder/internal/core/pantry"
	"recipe-finder/internal/core/tagging"

	"github.com/gin-gonic/gin"
)

// TagRequest 標籤推導請求
type TagRequest struct {
	Ingredients []string `json:"ingredients"`
}

// MatchRequest 庫存符合度請求
type MatchRequest struct {
	Pantry      []string `json:"pantry"`
	Ingredients []string `json:"ingredients"`
}

// HandleTags POST /tags
func HandleTags(c *gin.Context) {
	var req TagRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Ingredients) == 0 {
		c.JSON(http.StatusOK, tagging.Analysis{Tags: tagging.Neutral()})
		return
	}
	c.JSON(http.StatusOK, tagging.Analyze(req.Ingredients))
}

// HandleMatch POST /pantry/match
func HandleMatch(c *gin.Context) {
	var req MatchRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"match_percent": pantry.MatchPercent(req.Pantry, req.Ingredients),
	})
}
