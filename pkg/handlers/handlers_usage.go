package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/duty-roster-go/pkg/database"
)

// GetMyUsage returns usage stats for the authenticated key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKey := currentKey(c)
	if apiKey == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}

	usage, err := database.RecentUsage(h.DB, apiKey.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	var requests, days, people int64
	for _, u := range usage {
		requests += int64(u.RequestCount)
		days += int64(u.TotalDays)
		people += int64(u.TotalPeople)
	}

	c.JSON(http.StatusOK, gin.H{
		"team":          apiKey.Team,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests": requests,
			"days":     days,
			"people":   people,
		},
	})
}
