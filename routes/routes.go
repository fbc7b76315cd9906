package routes

import (
	"mealplanner/controllers"
	"mealplanner/middlewares"
	"mealplanner/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter(hub *services.RealtimeHub) *gin.Engine {
	r := gin.Default()

	// Dev-only token mint (no identity provider locally)
	dev := r.Group("/dev")
	{
		dev.POST("/token/:userId", controllers.MintToken)
	}

	rc := controllers.NewRealtimeController(hub)

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/meals/generate", controllers.GenerateMeal)
		api.POST("/meals/accept", controllers.AcceptMeal)
		api.GET("/meals/history", controllers.ListMealHistory)
		api.GET("/meals/recommendations", controllers.DiversityRecommendations)

		api.GET("/pantry", controllers.ListPantry)
		api.POST("/pantry", controllers.AddPantryItem)
		api.GET("/pantry/depletion", controllers.DepletionForecast)

		api.GET("/profile", controllers.GetProfile)
		api.PUT("/profile", controllers.UpsertProfile)

		api.GET("/alerts/ws", rc.AlertsWS)
	}

	return r
}
