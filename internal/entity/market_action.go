package entity

import (
	"crypto/md5"
	"fmt"
)

type MarketAction struct {
	ListingId    uint64     `json:"listingId"`
	TokenAddress string     `json:"tokenAddress"`
	TokenId      uint64     `json:"tokenId"`
	Action       ActionType `json:"action"`
	SaleMode     SaleMode   `json:"saleMode"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	Cost         string     `json:"cost"`
	Royalty      string     `json:"royalty"`
	Fungible     string     `json:"fungible"`
	Timestamp    int64      `json:"timestamp"`
}

type ActionType string

const (
	ListedAction         ActionType = "listed"
	SaleAction           ActionType = "sale"
	BidAction            ActionType = "bid"
	BidRefundAction      ActionType = "bidRefund"
	CancelledAction      ActionType = "cancelled"
	ExpiredAction        ActionType = "expired"
	AuctionStartedAction ActionType = "auctionStarted"
	PausedAction         ActionType = "paused"
	UnpausedAction       ActionType = "unpaused"
)

func (a MarketAction) Slug() string {
	return CreateMarketActionSlug(a.ListingId, string(a.Action), a.To, a.Cost, a.Timestamp)
}

func CreateMarketActionSlug(listingId uint64, action, to, cost string, timestamp int64) string {
	data := []byte(fmt.Sprintf("marketaction-%d-%s-%s-%s-%d", listingId, action, to, cost, timestamp))
	return fmt.Sprintf("%x", md5.Sum(data))
}
