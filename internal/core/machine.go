// Package core drives the room's auction lifecycle. Each operation
// dispatches on the current phase; illegal combinations fail fast with
// false and leave the room untouched.
package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gavel/internal/domain"
)

// DefaultListingDelay is the pause between listing an item and opening the
// bidding when no delay is configured.
const DefaultListingDelay = 3 * time.Second

// Machine applies phase-dependent behavior to a room. It assumes the
// permission layer has already vetted the caller; here only phase legality
// and transition side effects are decided.
type Machine struct {
	listingDelay time.Duration
}

func NewMachine(listingDelay time.Duration) *Machine {
	if listingDelay <= 0 {
		listingDelay = DefaultListingDelay
	}
	return &Machine{listingDelay: listingDelay}
}

// StartAuction advances the lifecycle. From Preparing it lists the item and
// arms the auto-advance into Auctioning; from Listing it opens bidding
// immediately (cancelling the pending auto-advance); from Closed it resets
// the room for the next round.
func (m *Machine) StartAuction(room *domain.Room) bool {
	switch room.Phase() {
	case domain.PhasePreparing:
		if room.CurrentItem() == nil {
			log.Warn().Str("module", "core.machine").Str("room", string(room.ID())).Msg("no item to auction")
			return false
		}
		room.ChangePhase(domain.PhaseListing)
		room.ScheduleAutoAdvance(m.listingDelay, domain.PhaseListing, domain.PhaseAuctioning)
		return true
	case domain.PhaseListing:
		room.ChangePhase(domain.PhaseAuctioning)
		return true
	case domain.PhaseAuctioning:
		return false
	case domain.PhaseClosed:
		room.ChangePhase(domain.PhasePreparing)
		room.ClearAuction()
		room.AddSystemMessage("Preparing the next round")
		return true
	}
	return false
}

// EndAuction closes the bidding and announces the outcome. Only legal while
// auctioning.
func (m *Machine) EndAuction(room *domain.Room) bool {
	if room.Phase() != domain.PhaseAuctioning {
		return false
	}
	room.ChangePhase(domain.PhaseClosed)
	if winner := room.CurrentBid(); winner != nil {
		room.AddSystemMessage(fmt.Sprintf("Sold! %s wins at %d", winner.BidderName, winner.Price))
	} else {
		room.AddSystemMessage("No sale: nobody placed a bid")
	}
	return true
}

// PlaceBid records a bid unconditionally; eligibility and the amount floor
// were already checked by the permission layer.
func (m *Machine) PlaceBid(room *domain.Room, user *domain.User, amount int64) bool {
	if room.Phase() != domain.PhaseAuctioning {
		return false
	}
	bid := domain.Bid{
		ID:         uuid.NewString(),
		Price:      amount,
		BidderID:   user.ID,
		BidderName: user.Nickname,
		PlacedAt:   time.Now(),
	}
	room.AddBid(bid)
	log.Info().
		Str("module", "core.machine").
		Str("room", string(room.ID())).
		Str("bidder", string(user.ID)).
		Int64("amount", amount).
		Msg("bid accepted")
	return true
}

// UploadItem installs the lot and its rules. The item is locked once the
// room leaves Preparing.
func (m *Machine) UploadItem(room *domain.Room, item domain.AuctionItem, rules domain.AuctionRules) bool {
	if room.Phase() != domain.PhasePreparing {
		return false
	}
	room.SetAuctionItem(item, rules)
	return true
}

// Describe explains what the current phase allows, for display.
func (m *Machine) Describe(phase domain.Phase) string {
	switch phase {
	case domain.PhasePreparing:
		return "Preparing: the auctioneer can upload a lot and set the rules"
	case domain.PhaseListing:
		return "Listing: the lot is on display, bidding opens shortly"
	case domain.PhaseAuctioning:
		return "In auction: bidders can place bids until the hammer falls"
	case domain.PhaseClosed:
		return "Hammer down: the round is over, a new one can begin"
	}
	return "Unknown phase"
}
