package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/comandaonline/comanda-api/config"
	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/router"
	"github.com/comandaonline/comanda-api/utils"
)

func main() {
	// Load .env antes de qualquer configuração
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Bar{},
		&models.Table{},
		&models.MenuItem{},
		&models.Command{},
		&models.CommandItem{},
		&models.Payment{},
	); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	r := router.SetupRouter(db)

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
