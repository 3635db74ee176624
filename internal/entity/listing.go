package entity

import (
	"fmt"
	"github.com/gosimple/slug"
	"math/big"
)

type AssetType int

const (
	SingleEditionAsset AssetType = 1
	MultiEditionAsset  AssetType = 2
	CertificateAsset   AssetType = 3
	LicenseBackedAsset AssetType = 4
)

type SaleMode string

const (
	FixedSale      SaleMode = "FixedSale"
	DutchAuction   SaleMode = "DutchAuction"
	EnglishAuction SaleMode = "EnglishAuction"
)

type ListingState string

const (
	ListingListed    ListingState = "Listed"
	ListingPaused    ListingState = "Paused"
	ListingActive    ListingState = "Active"
	ListingSold      ListingState = "Sold"
	ListingCancelled ListingState = "Cancelled"
	ListingExpired   ListingState = "Expired"
)

// Asset is the caller-supplied description of the thing being listed.
type Asset struct {
	AssetType    AssetType `json:"assetType"`
	Seller       string    `json:"seller"`
	Creator      string    `json:"creator"`
	TokenAddress string    `json:"tokenAddress"`
	TokenId      uint64    `json:"tokenId"`
	Quantity     uint64    `json:"quantity"`
	Price        *big.Int  `json:"price"`
	Uri          string    `json:"uri"`
	Stakeholders []string  `json:"stakeholders"`
	RoyaltySplit []uint    `json:"royaltySplit"`
}

type DutchParams struct {
	StartingPrice *big.Int `json:"startingPrice"`
	StartAt       int64    `json:"startAt"`
	ExpiresAt     int64    `json:"expiresAt"`
	DiscountRate  *big.Int `json:"discountRate"`
}

type EnglishState struct {
	ReservePrice  *big.Int `json:"reservePrice"`
	Duration      int64    `json:"duration"`
	AuctionEnd    int64    `json:"auctionEnd"`
	HighestBid    *big.Int `json:"highestBid"`
	HighestBidder string   `json:"highestBidder"`
}

type Listing struct {
	Id           uint64       `json:"id"`
	AssetType    AssetType    `json:"assetType"`
	Seller       string       `json:"seller"`
	Creator      string       `json:"creator"`
	TokenAddress string       `json:"tokenAddress"`
	TokenId      uint64       `json:"tokenId"`
	Quantity     uint64       `json:"quantity"`
	Price        *big.Int     `json:"price"`
	Uri          string       `json:"uri"`
	Stakeholders []string     `json:"stakeholders"`
	RoyaltySplit []uint       `json:"royaltySplit"`
	SaleMode     SaleMode     `json:"saleMode"`
	State        ListingState `json:"state"`
	IsAuction    bool         `json:"isAuction"`
	CreatedAt    int64        `json:"createdAt"`

	Dutch   *DutchParams  `json:"dutch,omitempty"`
	English *EnglishState `json:"english,omitempty"`
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.Id)
}

func CreateListingSlug(listingId uint64) string {
	return slug.Make(fmt.Sprintf("listing-%d", listingId))
}

// DutchPrice returns the discounted price at time now, never below the
// reserve. The floor is inclusive: a buy at exactly the reserve is valid.
func (l Listing) DutchPrice(now int64) *big.Int {
	if l.Dutch == nil {
		return l.Price
	}

	if now < l.Dutch.StartAt {
		return l.Dutch.StartingPrice
	}

	elapsed := new(big.Int).SetInt64(now - l.Dutch.StartAt)
	discount := new(big.Int).Mul(l.Dutch.DiscountRate, elapsed)
	current := new(big.Int).Sub(l.Dutch.StartingPrice, discount)

	if current.Cmp(l.Price) < 0 {
		return new(big.Int).Set(l.Price)
	}

	return current
}

// Terminal reports whether the listing can never transition again.
func (l Listing) Terminal() bool {
	return l.State == ListingSold || l.State == ListingCancelled || l.State == ListingExpired
}
