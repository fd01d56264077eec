package domain

import (
	"fmt"
	"time"
)

// AuctionItem is an immutable description of what is up for bid.
type AuctionItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	AuctioneerID   UserID `json:"auctioneer_id"`
	AuctioneerName string `json:"auctioneer_name"`
}

func (i AuctionItem) DisplayInfo() string {
	return fmt.Sprintf("%s - %s", i.Name, i.Description)
}

// AuctionRules is fixed at upload time for the current item. Prices are in
// whole currency units.
type AuctionRules struct {
	StartPrice       int64 `json:"start_price"`
	IncrementStep    int64 `json:"increment_step"`
	CountdownSeconds int   `json:"countdown_seconds"`
}

func DefaultRules() AuctionRules {
	return AuctionRules{StartPrice: 100, IncrementStep: 10, CountdownSeconds: 30}
}

// Bid is an immutable accepted offer.
type Bid struct {
	ID         string    `json:"id"`
	Price      int64     `json:"price"`
	BidderID   UserID    `json:"bidder_id"`
	BidderName string    `json:"bidder_name"`
	PlacedAt   time.Time `json:"placed_at"`
}

func (b Bid) DisplayText() string {
	return fmt.Sprintf("%s bids %d", b.BidderName, b.Price)
}
