package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/mintlane/marketplace-engine/internal/entity"
	"go.uber.org/zap"
)

// Service archives settlement receipts to S3 as immutable JSON documents,
// keyed by listing and settlement time.
type Service interface {
	ArchiveReceipt(receipt entity.SettlementReceipt) error
}

type service struct {
	s3Client *s3.S3
	bucket   string
}

func NewService(s3Client *s3.S3, bucket string) Service {
	return service{s3Client, bucket}
}

func (s service) ArchiveReceipt(receipt entity.SettlementReceipt) error {
	body, err := json.Marshal(receipt)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("receipts/%d/%s.json", receipt.ListingId, receipt.Slug())

	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("key", key)).Error("Archive: failed to store receipt")
		return err
	}

	zap.L().With(
		zap.String("key", key),
		zap.Uint64("listingId", receipt.ListingId),
	).Info("Receipt archived")

	return nil
}
