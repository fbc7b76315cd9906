package controllers

import (
	"net/http"

	"mealplanner/config"
	"mealplanner/models"
	"mealplanner/services"
	"mealplanner/utils"

	"github.com/gin-gonic/gin"
)

// GetProfile returns the raw stored profile together with the derived
// targets the generator would use right now.
func GetProfile(c *gin.Context) {
	uid := c.GetUint("userID")

	svc := services.NewProfileService(config.DB)
	profile, err := svc.Get(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"profile": profile,
		"derived": services.AnalyzeProfile(profile),
	}
	if profile != nil {
		if bmi, err := utils.CalculateBMI(profile.HeightCm, profile.WeightKg); err == nil {
			resp["bmi"] = bmi
			resp["bmiCategory"] = utils.BMICategory(bmi)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func UpsertProfile(c *gin.Context) {
	uid := c.GetUint("userID")

	var input models.UserProfile
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.UserID = uid

	svc := services.NewProfileService(config.DB)
	if err := svc.Upsert(&input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, input)
}
