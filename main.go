package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quickbid/quickbid/auction"
	"github.com/quickbid/quickbid/database"
	"github.com/quickbid/quickbid/jobs"
	"github.com/quickbid/quickbid/realtime"
	"github.com/quickbid/quickbid/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, relying on process environment")
	}

	database.Connect()

	host := os.Getenv("HOST")
	port := os.Getenv("PORT")

	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3000"
	}

	hub := realtime.NewHub()
	engine := auction.NewEngine(database.DB, hub)

	app := fiber.New()
	routes.Setup(app, engine, hub)
	scheduler := jobs.StartScheduler()

	addr := fmt.Sprintf("%s:%s", host, port)
	log.Infof("Server running at %s", addr)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.WithError(err).Panic("Failed to start server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info("Gracefully shutting down...")
	scheduler.Stop()
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}
	log.Info("Server exited cleanly")
}
