package main

import (
	"os"

	"github.com/orderhub-io/go-backend/internal/app"
	config "github.com/orderhub-io/go-backend/internal/cfg"
	"github.com/orderhub-io/go-backend/pkg/logger"
)

//	@title			OrderHub API
//	@version		1.0
//	@description	Сервис управления каталогом товаров и заказами

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
