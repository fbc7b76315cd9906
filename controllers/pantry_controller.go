package controllers

import (
	"net/http"

	"mealplanner/config"
	"mealplanner/models"
	"mealplanner/services"

	"github.com/gin-gonic/gin"
)

func ListPantry(c *gin.Context) {
	uid := c.GetUint("userID")

	svc := services.NewConsumptionService(config.DB)
	items, err := svc.ListPantry(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func AddPantryItem(c *gin.Context) {
	uid := c.GetUint("userID")

	var item models.PantryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must not be negative"})
		return
	}
	item.UserID = uid

	svc := services.NewConsumptionService(config.DB)
	if err := svc.AddPantryItem(&item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DepletionForecast returns the pantry sorted by how soon each item
// runs out, given the recent consumption trail.
func DepletionForecast(c *gin.Context) {
	uid := c.GetUint("userID")

	svc := services.NewConsumptionService(config.DB)
	pantry, err := svc.ListPantry(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	records, err := svc.RecentRecords(uid, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.PredictDepletion(pantry, records))
}
