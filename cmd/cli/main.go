package main

import (
	"fmt"
	"github.com/mintlane/marketplace-engine/generated/dic"
	"github.com/mintlane/marketplace-engine/internal/config"
	"github.com/mintlane/marketplace-engine/internal/dev"
	"github.com/mintlane/marketplace-engine/internal/elastic_search"
	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/market"
	"github.com/mintlane/marketplace-engine/internal/messenger"
	"github.com/mintlane/marketplace-engine/internal/repository"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"math/big"
	"os"
	"strconv"
	"strings"
)

var (
	container        *dic.Container
	elastic          elastic_search.Index
	marketplace      *market.Marketplace
	issuer           market.Issuer
	listingRepo      repository.ListingRepository
	messengerService messenger.MessageService
)

func main() {
	config.Init("cli")

	container, _ = dic.NewContainer()
	elastic = container.GetElastic()
	marketplace = container.GetMarketplace()
	issuer = container.GetIssuer()
	listingRepo = container.GetListingRepo()
	messengerService = container.GetMessenger()

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List an asset for sale (fixed, dutch or english)",
				Action: listAsset,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Value: "fixed", Usage: "Sale mode (fixed, dutch, english)"},
					&cli.IntFlag{Name: "assetType", Value: 1, Usage: "Asset type (1 single, 2 multi, 3 certificate, 4 license backed)"},
					&cli.StringFlag{Name: "token", Value: "", Usage: "Token contract address"},
					&cli.Uint64Flag{Name: "tokenId", Value: 0, Usage: "Token id"},
					&cli.StringFlag{Name: "seller", Value: "", Usage: "Seller account"},
					&cli.StringFlag{Name: "price", Value: "0", Usage: "Sale price (floor price for dutch)"},
					&cli.Uint64Flag{Name: "quantity", Value: 1, Usage: "Edition quantity"},
					&cli.StringFlag{Name: "startingPrice", Value: "0", Usage: "Dutch starting price"},
					&cli.Int64Flag{Name: "startAt", Value: 0, Usage: "Dutch sale start (unix)"},
					&cli.Int64Flag{Name: "expiresAt", Value: 0, Usage: "Dutch sale expiry (unix)"},
					&cli.StringFlag{Name: "discountRate", Value: "0", Usage: "Dutch discount per second"},
					&cli.StringFlag{Name: "reserve", Value: "0", Usage: "English reserve price"},
					&cli.Int64Flag{Name: "duration", Value: 0, Usage: "English auction duration in seconds"},
					&cli.BoolFlag{Name: "auction", Usage: "Flag the listing as an auction"},
					&cli.StringFlag{Name: "uri", Value: "", Usage: "Metadata uri"},
				},
			},
			{
				Name:   "buy",
				Usage:  "Buy a fixed or dutch listing",
				Action: buyListing,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "buyer", Value: "", Usage: "Buyer account"},
					&cli.BoolFlag{Name: "escrow", Usage: "Spend the buyer's escrow balance first"},
				},
			},
			{
				Name:   "bid",
				Usage:  "Bid on an english auction",
				Action: bidListing,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "bidder", Value: "", Usage: "Bidder account"},
					&cli.StringFlag{Name: "amount", Value: "0", Usage: "Bid amount"},
				},
			},
			{
				Name:   "auction",
				Usage:  "Manage a listing (start, pause, unpause, end, cancel)",
				Action: manageListing,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "caller", Value: "", Usage: "Calling account"},
				},
			},
			{
				Name:   "role",
				Usage:  "Grant or revoke a role",
				Action: manageRole,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Value: "", Usage: "Target account"},
				},
			},
			{
				Name:   "license",
				Usage:  "Grant a license on an asset",
				Action: grantLicense,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "collection", Value: "", Usage: "Collection contract address"},
					&cli.Uint64Flag{Name: "tokenId", Value: 0, Usage: "Token id"},
					&cli.StringFlag{Name: "licensee", Value: "", Usage: "Licensee account"},
					&cli.Uint64Flag{Name: "terms", Value: 1, Usage: "Number of term units"},
				},
			},
			{
				Name:   "mint",
				Usage:  "Mint new editions into a collection",
				Action: mintAsset,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "caller", Value: "", Usage: "Minting account"},
					&cli.StringFlag{Name: "collection", Value: "", Usage: "Collection contract address"},
					&cli.StringFlag{Name: "recipient", Value: "", Usage: "Recipient account"},
					&cli.Uint64Flag{Name: "quantity", Value: 1, Usage: "Edition quantity"},
					&cli.StringFlag{Name: "uri", Value: "", Usage: "Metadata uri"},
				},
			},
			{
				Name:   "listings",
				Usage:  "Show open listings",
				Action: showListings,
			},
			{
				Name:   "queue",
				Usage:  "Show the receipt archive queue size",
				Action: showQueueSize,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start CLI")
	}
}

func listAsset(c *cli.Context) error {
	asset := entity.Asset{
		AssetType:    entity.AssetType(c.Int("assetType")),
		TokenAddress: c.String("token"),
		TokenId:      c.Uint64("tokenId"),
		Seller:       c.String("seller"),
		Quantity:     c.Uint64("quantity"),
		Price:        bigInt(c.String("price")),
	}

	var (
		listingId uint64
		err       error
	)

	switch strings.ToLower(c.String("mode")) {
	case "fixed":
		listingId, err = marketplace.Store().AddAssetForFixedSale(asset, c.Bool("auction"), c.String("uri"))
	case "dutch":
		listingId, err = marketplace.Store().AddAssetForDutchAuction(asset, entity.DutchParams{
			StartingPrice: bigInt(c.String("startingPrice")),
			StartAt:       c.Int64("startAt"),
			ExpiresAt:     c.Int64("expiresAt"),
			DiscountRate:  bigInt(c.String("discountRate")),
		}, c.Bool("auction"), c.String("uri"))
	case "english":
		listingId, err = marketplace.Store().AddAssetForEnglishAuction(asset, bigInt(c.String("reserve")), c.Int64("duration"), true, c.String("uri"))
	default:
		zap.L().Error("No sale mode provided")
		return nil
	}

	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to list asset")
		return err
	}

	elastic.Persist()
	zap.S().Infof("Listed asset as listing %d", listingId)

	return nil
}

func buyListing(c *cli.Context) error {
	listingId, err := listingIdArg(c)
	if err != nil {
		return err
	}

	if err := marketplace.Engine().Buy(listingId, c.String("buyer"), c.Bool("escrow")); err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("listingId", listingId)).Error("Failed to buy listing")
		return err
	}

	elastic.Persist()
	zap.S().Infof("Bought listing %d", listingId)

	return nil
}

func bidListing(c *cli.Context) error {
	listingId, err := listingIdArg(c)
	if err != nil {
		return err
	}

	if err := marketplace.Engine().Bid(listingId, c.String("bidder"), bigInt(c.String("amount"))); err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("listingId", listingId)).Error("Failed to bid on listing")
		return err
	}

	elastic.Persist()
	zap.S().Infof("Bid placed on listing %d", listingId)

	return nil
}

func manageListing(c *cli.Context) error {
	listingId, err := listingIdArg(c)
	if err != nil {
		return err
	}
	caller := c.String("caller")

	switch strings.ToLower(c.Args().Get(1)) {
	case "start":
		err = marketplace.Engine().StartAuction(listingId, caller)
	case "pause":
		err = marketplace.Engine().PauseSale(listingId, caller)
	case "unpause":
		err = marketplace.Engine().UnpauseSale(listingId, caller)
	case "end":
		err = marketplace.Engine().EndAuction(listingId, caller)
	case "cancel":
		err = marketplace.Engine().CancelListing(listingId, caller)
	default:
		zap.L().Error("No action provided")
		return nil
	}

	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("listingId", listingId)).Error("Failed to manage listing")
		return err
	}

	elastic.Persist()
	zap.S().Infof("Managed listing %d", listingId)

	return nil
}

func manageRole(c *cli.Context) error {
	var role entity.Role
	switch strings.ToLower(c.Args().Get(1)) {
	case "minter":
		role = entity.MinterRole
	case "governor":
		role = entity.GovernorRole
	default:
		zap.L().Error("No role provided")
		return nil
	}

	switch strings.ToLower(c.Args().First()) {
	case "grant":
		marketplace.Roles().GrantRole(role, c.String("account"))
	case "revoke":
		marketplace.Roles().RevokeRole(role, c.String("account"))
	default:
		zap.L().Error("No action provided")
		return nil
	}

	return nil
}

func grantLicense(c *cli.Context) error {
	licenseId, err := marketplace.Licenses().GrantLicense(
		c.String("collection"),
		c.Uint64("tokenId"),
		c.Uint64("terms"),
		c.String("licensee"),
	)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to grant license")
		return err
	}

	elastic.Persist()
	zap.S().Infof("Granted license %s", licenseId)

	return nil
}

func mintAsset(c *cli.Context) error {
	tokenId, err := issuer.Create(
		c.String("caller"),
		c.String("collection"),
		c.String("recipient"),
		c.Uint64("quantity"),
		c.String("uri"),
	)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to mint asset")
		return err
	}

	zap.S().Infof("Minted token %d", tokenId)

	return nil
}

func showListings(c *cli.Context) error {
	listings, total, err := listingRepo.GetOpenListings(100, 1)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to get open listings")
		return err
	}

	zap.S().Infof("Found %d open listings", total)
	for _, listing := range listings {
		fmt.Printf("%d: %s/%d %s %s %s\n", listing.Id, listing.TokenAddress, listing.TokenId, listing.SaleMode, listing.State, listing.Price)
		dev.Dump(listing)
	}

	return nil
}

func showQueueSize(c *cli.Context) error {
	size, err := messengerService.GetQueueSize(messenger.ReceiptArchive)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Could not get the queue size")
		return nil
	}

	zap.S().Infof("Receipt archive queue size: %d", *size)

	return nil
}

func listingIdArg(c *cli.Context) (uint64, error) {
	listingId, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		zap.L().Error("No listing id provided")
		return 0, err
	}

	return listingId, nil
}

func bigInt(value string) *big.Int {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return big.NewInt(0)
	}

	return amount
}
