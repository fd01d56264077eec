package domain

// Phase is the room's position in the auction lifecycle. Exactly one phase
// is active at a time; legality of operations depends on it.
type Phase int

const (
	PhasePreparing Phase = iota
	PhaseListing
	PhaseAuctioning
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhasePreparing:
		return "preparing"
	case PhaseListing:
		return "listing"
	case PhaseAuctioning:
		return "auctioning"
	case PhaseClosed:
		return "closed"
	}
	return "unknown"
}

// DisplayName is what system messages announce on a phase change.
func (p Phase) DisplayName() string {
	switch p {
	case PhasePreparing:
		return "Preparing"
	case PhaseListing:
		return "Listing"
	case PhaseAuctioning:
		return "In Auction"
	case PhaseClosed:
		return "Hammer Down"
	}
	return "Unknown"
}
