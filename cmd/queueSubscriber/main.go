package main

import (
	"encoding/json"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/mintlane/marketplace-engine/generated/dic"
	"github.com/mintlane/marketplace-engine/internal/archive"
	"github.com/mintlane/marketplace-engine/internal/config"
	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/messenger"
	"go.uber.org/zap"
)

var (
	messageService messenger.MessageService
	archiveService archive.Service
)

func main() {
	config.Init("subscriber")

	container, _ := dic.NewContainer()
	messageService = container.GetMessenger()
	archiveService = container.GetArchive()

	pollReceiptArchive()
}

func pollReceiptArchive() {
	zap.L().Info("Subscribing to receipt archive")
	messages := make(chan *sqs.Message, 10)
	go messageService.PollMessages(messenger.ReceiptArchive, messages)

	for message := range messages {
		var receipt entity.SettlementReceipt
		if err := json.Unmarshal([]byte(*message.Body), &receipt); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to read message")
			continue
		}
		zap.L().With(zap.Uint64("listingId", receipt.ListingId)).Info("Receipt archive")

		if err := archiveService.ArchiveReceipt(receipt); err != nil {
			zap.L().With(zap.Uint64("listingId", receipt.ListingId), zap.Error(err)).Error("Receipt archive failed")
			continue
		}

		if err := messageService.DeleteMessage(messenger.ReceiptArchive, message); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to delete message")
		}
	}
}
