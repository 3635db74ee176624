package di

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mintlane/marketplace-engine/internal/api"
	"github.com/mintlane/marketplace-engine/internal/archive"
	"github.com/mintlane/marketplace-engine/internal/config"
	"github.com/mintlane/marketplace-engine/internal/daemon"
	"github.com/mintlane/marketplace-engine/internal/elastic_search"
	"github.com/mintlane/marketplace-engine/internal/funds"
	"github.com/mintlane/marketplace-engine/internal/market"
	"github.com/mintlane/marketplace-engine/internal/messenger"
	"github.com/mintlane/marketplace-engine/internal/registry"
	"github.com/mintlane/marketplace-engine/internal/repository"
	"github.com/sarulabs/dingo/v4"
	"go.uber.org/zap"
)

var Definitions = []dingo.Def{
	{
		Name: "elastic",
		Build: func() (elastic_search.Index, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "http.client",
		Build: func() (*retryablehttp.Client, error) {
			client := retryablehttp.NewClient()
			client.Logger = nil
			return client, nil
		},
	},
	{
		Name: "aws",
		Build: func() (*session.Session, error) {
			return session.NewSession(&aws.Config{
				Region: aws.String(config.Get().Aws.Region),
				Credentials: credentials.NewStaticCredentials(
					config.Get().Aws.AccessKey,
					config.Get().Aws.SecretKey,
					"",
				),
			})
		},
	},
	{
		Name: "registry",
		Build: func(client *retryablehttp.Client) (registry.Service, error) {
			cfg := config.Get().Registry
			return registry.NewService(cfg.Url, client, cfg.Timeout, cfg.Debug), nil
		},
	},
	{
		Name: "funds",
		Build: func(client *retryablehttp.Client) (funds.Service, error) {
			cfg := config.Get().Funds
			return funds.NewService(cfg.Url, cfg.Token, config.Get().Market.Treasury, client, cfg.Timeout, cfg.Debug), nil
		},
	},
	{
		Name: "recorder",
		Build: func(elastic elastic_search.Index) (repository.ElasticRecorder, error) {
			return repository.NewElasticRecorder(elastic), nil
		},
	},
	{
		Name: "licenses",
		Build: func() (*market.LicenseLedger, error) {
			return market.NewLicenseLedger(config.Get().Market.LicenseTermUnit), nil
		},
	},
	{
		Name: "marketplace",
		Build: func(
			registrySvc registry.Service,
			fundsSvc funds.Service,
			licenses *market.LicenseLedger,
			recorder repository.ElasticRecorder,
		) (*market.Marketplace, error) {
			marketplace := market.NewMarketplace()
			if err := marketplace.Initialize(registrySvc, fundsSvc, licenses, recorder, config.Get().Market.Treasury); err != nil {
				return nil, err
			}

			return marketplace, nil
		},
	},
	{
		Name: "issuer",
		Build: func(marketplace *market.Marketplace, registrySvc registry.Service) (market.Issuer, error) {
			return market.NewIssuer(marketplace.Roles(), registrySvc), nil
		},
	},
	{
		Name: "listing.repo",
		Build: func(elastic elastic_search.Index) (repository.ListingRepository, error) {
			return repository.NewListingRepository(elastic), nil
		},
	},
	{
		Name: "action.repo",
		Build: func(elastic elastic_search.Index) (repository.MarketActionRepository, error) {
			return repository.NewMarketActionRepository(elastic), nil
		},
	},
	{
		Name: "messenger",
		Build: func(sess *session.Session) (messenger.MessageService, error) {
			return messenger.NewMessenger(sqs.New(sess)), nil
		},
	},
	{
		Name: "archive",
		Build: func(sess *session.Session) (archive.Service, error) {
			return archive.NewService(s3.New(sess), config.Get().Aws.ReceiptBucket), nil
		},
	},
	{
		Name: "daemon",
		Build: func(elastic elastic_search.Index, marketplace *market.Marketplace) (*daemon.Daemon, error) {
			return daemon.NewDaemon(elastic, marketplace), nil
		},
	},
	{
		Name: "api",
		Build: func(
			marketplace *market.Marketplace,
			issuer market.Issuer,
			listingRepo repository.ListingRepository,
			actionRepo repository.MarketActionRepository,
		) (api.Server, error) {
			return api.NewServer(marketplace, issuer, listingRepo, actionRepo), nil
		},
	},
}
