package controllers

import (
	"net/http"
	"strconv"

	"mealplanner/config"
	"mealplanner/services"

	"github.com/gin-gonic/gin"
)

// ListMealHistory returns the rolling history window plus the usage
// stats the diversity manager derives from it.
func ListMealHistory(c *gin.Context) {
	uid := c.GetUint("userID")

	days := 0
	if v := c.Query("days"); v != "" {
		days, _ = strconv.Atoi(v)
	}

	svc := services.NewDiversityService(config.DB)
	idx, err := svc.LoadHistory(uid, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": idx.Entries,
		"usage":   idx.Usage,
	})
}
