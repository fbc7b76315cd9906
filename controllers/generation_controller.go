package controllers

import (
	"errors"
	"net/http"

	"mealplanner/config"
	"mealplanner/models"
	"mealplanner/services"

	"github.com/gin-gonic/gin"
)

type generateRequest struct {
	MealType string                     `json:"meal_type" binding:"required"`
	Options  services.GenerationOptions `json:"options"`
	// HistoryDays controls the rotation window read before generating.
	HistoryDays int `json:"history_days"`
}

func GenerateMeal(c *gin.Context) {
	uid := c.GetUint("userID")

	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profileSvc := services.NewProfileService(config.DB)
	diversitySvc := services.NewDiversityService(config.DB)
	consumptionSvc := services.NewConsumptionService(config.DB)
	genSvc := services.NewGenerationService(diversitySvc, services.NewLLMService())

	profile, err := profileSvc.Get(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	pantry, err := consumptionSvc.ListPantry(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	idx, err := diversitySvc.LoadHistory(uid, body.HistoryDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := genSvc.Generate(c.Request.Context(), body.MealType, pantry, profile, idx.Entries, body.Options)
	if err != nil {
		if errors.Is(err, services.ErrGenerationExhausted) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type acceptRequest struct {
	Meal    models.Meal `json:"meal" binding:"required"`
	Consume bool        `json:"consume"`
}

// AcceptMeal persists an accepted meal to history and, on request, runs
// it through the consumption engine. Acceptance is the first point at
// which anything is written.
func AcceptMeal(c *gin.Context) {
	uid := c.GetUint("userID")

	var body acceptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	diversitySvc := services.NewDiversityService(config.DB)
	if err := diversitySvc.SaveMealToHistory(uid, &body.Meal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"saved": true}
	if body.Consume {
		consumptionSvc := services.NewConsumptionService(config.DB)
		pantry, err := consumptionSvc.ListPantry(uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		summary, err := consumptionSvc.ConsumeIngredients(&body.Meal, pantry, uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["consumption"] = summary
	}
	c.JSON(http.StatusOK, resp)
}

func DiversityRecommendations(c *gin.Context) {
	uid := c.GetUint("userID")

	diversitySvc := services.NewDiversityService(config.DB)
	idx, err := diversitySvc.LoadHistory(uid, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.GetDiversityRecommendations(idx))
}
