package main

import (
	"encoding/json"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/mintlane/marketplace-engine/generated/dic"
	"github.com/mintlane/marketplace-engine/internal/config"
	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/event"
	"github.com/mintlane/marketplace-engine/internal/messenger"
	"go.uber.org/zap"
	"net/http"
)

var container *dic.Container

func main() {
	config.Init("marketd")
	container, _ = dic.NewContainer()

	go health()

	zap.L().With(zap.String("port", config.Get().HealthPort)).Info("Marketd Started")

	event.OnSaleSettled(publishReceipt)

	container.GetDaemon().Execute()
}

func publishReceipt(receipt entity.SettlementReceipt) {
	body, err := json.Marshal(receipt)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to encode receipt")
		return
	}

	if err := container.GetMessenger().SendMessage(messenger.ReceiptArchive, body); err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("listingId", receipt.ListingId)).Error("Failed to queue receipt")
	}
}

func health() {
	if err := http.ListenAndServe(":"+config.Get().HealthPort, router()); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start marketd")
	}
}

func router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	}).Methods("GET")

	return r
}
