package permission

import (
	"fmt"

	"github.com/dkeye/Gavel/internal/domain"
)

// DefaultRules is the fixed rule set for an auction room. One rule per
// concern, priorities descending within an action; the engine short-circuits
// on the first denial.
func DefaultRules() []Rule {
	return []Rule{
		{
			Action:   domain.ActionPlaceBid,
			Priority: 100,
			Name:     "bid only while auctioning",
			Check: func(ctx Context) Result {
				if ctx.Room.Phase() != domain.PhaseAuctioning {
					return Deny("bidding is only open while the auction is running")
				}
				return Allow()
			},
		},
		{
			Action:   domain.ActionPlaceBid,
			Priority: 90,
			Name:     "auctioneer cannot bid on own item",
			Check: func(ctx Context) Result {
				item := ctx.Room.CurrentItem()
				if ctx.Actor.Role == domain.RoleAuctioneer && item != nil && ctx.Actor.ID == item.AuctioneerID {
					return Deny("the auctioneer cannot bid on their own lot")
				}
				return Allow()
			},
		},
		{
			Action:   domain.ActionPlaceBid,
			Priority: 80,
			Name:     "viewers cannot bid",
			Check: func(ctx Context) Result {
				if ctx.Actor.Role == domain.RoleViewer {
					return Deny("viewers cannot bid; become a bidder first")
				}
				return Allow()
			},
		},
		{
			Action:   domain.ActionPlaceBid,
			Priority: 70,
			Name:     "bid must meet the floor",
			Check: func(ctx Context) Result {
				if ctx.Params.BidAmount == nil {
					return Deny("bid amount is missing or invalid")
				}
				floor := ctx.Room.CurrentPrice() + ctx.Room.Rules().IncrementStep
				if *ctx.Params.BidAmount < floor {
					return Deny(fmt.Sprintf("bid must be at least %d", floor))
				}
				return Allow()
			},
		},

		{
			Action:   domain.ActionStartAuction,
			Priority: 100,
			Name:     "only the owner starts",
			Check: func(ctx Context) Result {
				if ctx.Actor.ID != ctx.Room.Owner().ID {
					return Deny("only the room owner can start the auction")
				}
				return Allow()
			},
		},
		{
			Action:   domain.ActionStartAuction,
			Priority: 90,
			Name:     "start only from preparing or listing",
			Check: func(ctx Context) Result {
				if p := ctx.Room.Phase(); p != domain.PhasePreparing && p != domain.PhaseListing {
					return Deny("the auction has already started or finished")
				}
				return Allow()
			},
		},
		{
			Action:   domain.ActionStartAuction,
			Priority: 80,
			Name:     "an item must be uploaded",
			Check: func(ctx Context) Result {
				if ctx.Room.CurrentItem() == nil {
					return Deny("upload a lot before starting the auction")
				}
				return Allow()
			},
		},

		{
			Action:   domain.ActionUploadItem,
			Priority: 100,
			Name:     "upload only while preparing",
			Check: func(ctx Context) Result {
				if ctx.Room.Phase() != domain.PhasePreparing {
					return Deny("lots can only be uploaded while preparing")
				}
				return Allow()
			},
		},
		{
			Action:   domain.ActionUploadItem,
			Priority: 90,
			Name:     "only the auctioneer uploads",
			Check: func(ctx Context) Result {
				if ctx.Actor.Role != domain.RoleAuctioneer {
					return Deny("only the auctioneer can upload lots")
				}
				return Allow()
			},
		},
		{
			Action:   domain.ActionUploadItem,
			Priority: 80,
			Name:     "auctioneer must be seated",
			Check: func(ctx Context) Result {
				if !ctx.Actor.OnMicrophone {
					return Deny("take a microphone seat before uploading a lot")
				}
				return Allow()
			},
		},

		{
			Action:   domain.ActionApplyForMicrophone,
			Priority: 100,
			Name:     "a free seat must exist",
			Check: func(ctx Context) Result {
				if _, ok := ctx.Room.AvailableMicrophone(); !ok {
					return Deny("all microphone seats are taken")
				}
				return Allow()
			},
		},
		{
			Action:   domain.ActionApplyForMicrophone,
			Priority: 90,
			Name:     "cannot take a second seat",
			Check: func(ctx Context) Result {
				if ctx.Actor.OnMicrophone {
					return Deny("you are already on a microphone seat")
				}
				return Allow()
			},
		},

		{
			Action:   domain.ActionAcceptMicrophoneRequest,
			Priority: 100,
			Name:     "only the owner manages seats",
			Check:    requireOwner("only the room owner can manage microphone seats"),
		},
		{
			Action:   domain.ActionKickFromMicrophone,
			Priority: 100,
			Name:     "only the owner kicks",
			Check:    requireOwner("only the room owner can manage microphone seats"),
		},

		{
			Action:   domain.ActionForceEndAuction,
			Priority: 100,
			Name:     "only the owner ends",
			Check:    requireOwner("only the room owner can end the auction"),
		},
		{
			Action:   domain.ActionForceEndAuction,
			Priority: 90,
			Name:     "end only while auctioning",
			Check: func(ctx Context) Result {
				if ctx.Room.Phase() != domain.PhaseAuctioning {
					return Deny("no auction is currently running")
				}
				return Allow()
			},
		},

		{
			Action:   domain.ActionSendVoice,
			Priority: 100,
			Name:     "voice needs a seat",
			Check: func(ctx Context) Result {
				if !ctx.Actor.OnMicrophone {
					return Deny("take a microphone seat to talk")
				}
				return Allow()
			},
		},
		{
			Action:   domain.ActionSendVoice,
			Priority: 90,
			Name:     "muted users stay silent",
			Check: func(ctx Context) Result {
				if ctx.Actor.Muted {
					return Deny("you are muted")
				}
				return Allow()
			},
		},

		{
			Action:   domain.ActionSendMessage,
			Priority: 100,
			Name:     "everyone can chat",
			Check: func(ctx Context) Result {
				return Allow()
			},
		},
	}
}

func requireOwner(reason string) func(Context) Result {
	return func(ctx Context) Result {
		if ctx.Actor.ID != ctx.Room.Owner().ID {
			return Deny(reason)
		}
		return Allow()
	}
}
