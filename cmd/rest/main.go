package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mongolens-be/internal/bootstrap"
	"mongolens-be/internal/config"
	"mongolens-be/internal/server"
)

func main() {
	cfg := config.Load()

	container := bootstrap.NewContainer(cfg)

	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		if err := container.SessionService.Disconnect(context.Background()); err != nil {
			log.Printf("Disconnect error: %v", err)
		}
		if err := srv.GetApp().Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
