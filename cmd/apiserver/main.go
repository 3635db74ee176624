package main

import (
	"github.com/mintlane/marketplace-engine/generated/dic"
	"github.com/mintlane/marketplace-engine/internal/config"
	"go.uber.org/zap"
	"net/http"
)

func main() {
	config.Init("api")
	container, _ := dic.NewContainer()

	router := container.GetApi().Router()

	zap.L().Info("Serving marketplace api on :" + config.Get().ApiPort)

	if err := http.ListenAndServe(":"+config.Get().ApiPort, router); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start api server")
	}
}
