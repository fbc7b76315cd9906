package main

import (
	"log"

	"mealplanner/config"
	"mealplanner/logger"
	"mealplanner/routes"
	"mealplanner/services"
)

func main() {
	logger.Init()
	config.InitDB()

	hub := services.NewRealtimeHub()
	push, err := services.NewPushService()
	if err != nil {
		log.Printf("push service unavailable: %v", err)
	}
	services.InitAlertDeps(config.DB, hub, push)

	r := routes.SetupRouter(hub)
	r.Run(":8080")
}
