package entity

import (
	"crypto/md5"
	"fmt"
)

type Payout struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type SettlementReceipt struct {
	ListingId    uint64   `json:"listingId"`
	TokenAddress string   `json:"tokenAddress"`
	TokenId      uint64   `json:"tokenId"`
	SaleMode     SaleMode `json:"saleMode"`
	Buyer        string   `json:"buyer"`
	Seller       string   `json:"seller"`
	FinalPrice   string   `json:"finalPrice"`
	Payouts      []Payout `json:"payouts"`
	Residual     string   `json:"residual"`
	Fungible     string   `json:"fungible"`
	SettledAt    int64    `json:"settledAt"`
}

func (r SettlementReceipt) Slug() string {
	data := []byte(fmt.Sprintf("receipt-%d-%s-%d", r.ListingId, r.Buyer, r.SettledAt))
	return fmt.Sprintf("%x", md5.Sum(data))
}
