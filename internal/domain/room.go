package domain

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultSeatCount = 6

var ErrNoSeats = errors.New("room needs at least one microphone seat")

type RoomID string

// SeatInfo is a read-only view of a microphone seat for APIs.
type SeatInfo struct {
	SeatNumber   int        `json:"seat_number"`
	Status       SeatStatus `json:"status"`
	Locked       bool       `json:"locked"`
	OccupantID   UserID     `json:"occupant_id,omitempty"`
	OccupantName string     `json:"occupant_name,omitempty"`
}

// Room is the aggregate for one live auction session. It owns its seats,
// messages, bids and current item, and holds non-owning references to users.
//
// The mutex exists because the listing auto-advance timer mutates the phase
// outside the caller's stack; all other mutation is expected to arrive
// serialized through the orchestrator.
type Room struct {
	mu        sync.RWMutex
	id        RoomID
	name      string
	owner     *User
	createdAt time.Time

	phase        Phase
	listingTimer *time.Timer

	microphones  []*Microphone
	currentItem  *AuctionItem
	rules        AuctionRules
	currentBid   *Bid
	bidHistory   []Bid
	participants []*User
	messages     []Message

	// notify, when set, observes every appended message. It runs under the
	// room lock and must not re-enter the room.
	notify func(Message)
}

// NewRoom creates a room with seatCount microphone seats. Seat 1 is given
// to the owner and locked; the owner joins as the first participant.
func NewRoom(name string, owner *User, seatCount int) (*Room, error) {
	if seatCount < 1 {
		return nil, ErrNoSeats
	}
	r := &Room{
		id:        RoomID(uuid.NewString()),
		name:      name,
		owner:     owner,
		createdAt: time.Now(),
		phase:     PhasePreparing,
		rules:     DefaultRules(),
	}
	for i := 1; i <= seatCount; i++ {
		mic := newMicrophone(i)
		if i == 1 {
			mic.Status = SeatOccupied
			mic.Occupant = owner
			mic.Locked = true
			owner.OnMicrophone = true
		}
		r.microphones = append(r.microphones, mic)
	}
	r.participants = append(r.participants, owner)
	r.systemMessageLocked(fmt.Sprintf("Welcome to %s!", name))
	return r, nil
}

func (r *Room) ID() RoomID           { return r.id }
func (r *Room) Name() string         { return r.name }
func (r *Room) Owner() *User         { return r.owner }
func (r *Room) CreatedAt() time.Time { return r.createdAt }

func (r *Room) Phase() Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

func (r *Room) CurrentItem() *AuctionItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentItem
}

func (r *Room) Rules() AuctionRules {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules
}

func (r *Room) CurrentBid() *Bid {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentBid
}

// CurrentPrice is the leading bid price, or the start price before any bid.
func (r *Room) CurrentPrice() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.currentBid != nil {
		return r.currentBid.Price
	}
	return r.rules.StartPrice
}

// CurrentLeader returns the leading bidder's name, or "" if nobody bid yet.
func (r *Room) CurrentLeader() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.currentBid != nil {
		return r.currentBid.BidderName
	}
	return ""
}

func (r *Room) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// CurrentAuctioneer is the seated auctioneer, if any.
func (r *Room) CurrentAuctioneer() *User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.participants {
		if u.Role == RoleAuctioneer && u.OnMicrophone {
			return u
		}
	}
	return nil
}

// SetNotify installs the message observer. Wire this once, before the room
// is shared.
func (r *Room) SetNotify(fn func(Message)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notify = fn
}

// AddUser adds a participant once; re-joining is a no-op.
func (r *Room) AddUser(u *User) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.ID == u.ID {
			return false
		}
	}
	r.participants = append(r.participants, u)
	r.systemMessageLocked(fmt.Sprintf("%s joined the room", u.Nickname))
	return true
}

func (r *Room) RemoveUser(id UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.participants {
		if p.ID == id {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return
		}
	}
}

func (r *Room) GetUser(id UserID) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.participants {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// AvailableMicrophone returns the lowest empty, unlocked seat number.
func (r *Room) AvailableMicrophone() (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, mic := range r.microphones {
		if mic.Status == SeatEmpty && !mic.Locked {
			return mic.SeatNumber, true
		}
	}
	return 0, false
}

// AssignMicrophone seats a user on an empty seat. A locked empty seat can
// be claimed here (explicit assignment); the apply flow never picks one.
func (r *Room) AssignMicrophone(u *User, seatNumber int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.OnMicrophone {
		return false
	}
	for _, mic := range r.microphones {
		if mic.SeatNumber != seatNumber {
			continue
		}
		if mic.Status != SeatEmpty {
			return false
		}
		mic.Status = SeatOccupied
		mic.Occupant = u
		u.OnMicrophone = true
		r.systemMessageLocked(fmt.Sprintf("%s took microphone seat %d", u.Nickname, seatNumber))
		return true
	}
	return false
}

// RemoveMicrophone clears the seat occupied by userID. The seat keeps its
// lock flag, so the owner seat stays locked even when vacated.
func (r *Room) RemoveMicrophone(userID UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mic := range r.microphones {
		if mic.Occupant == nil || mic.Occupant.ID != userID {
			continue
		}
		nickname := mic.Occupant.Nickname
		mic.Occupant.OnMicrophone = false
		mic.Occupant = nil
		mic.Status = SeatEmpty
		r.systemMessageLocked(fmt.Sprintf("%s left the microphone", nickname))
		return true
	}
	return false
}

// SetAuctionItem installs the current lot and its rules.
func (r *Room) SetAuctionItem(item AuctionItem, rules AuctionRules) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentItem = &item
	r.rules = rules
	r.systemMessageLocked(fmt.Sprintf("New lot: %s", item.Name))
}

// ClearAuction drops the current item and leading bid for the next round.
func (r *Room) ClearAuction() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentItem = nil
	r.currentBid = nil
}

// AddBid records an accepted bid as the new leader and announces it.
func (r *Room) AddBid(bid Bid) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentBid = &bid
	r.bidHistory = append(r.bidHistory, bid)
	r.appendMessageLocked(Message{
		ID:       uuid.NewString(),
		UserID:   bid.BidderID,
		Username: bid.BidderName,
		Content:  bid.DisplayText(),
		Kind:     MessageBid,
		SentAt:   bid.PlacedAt,
	})
}

func (r *Room) AddMessage(from *User, content string, kind MessageKind) Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := Message{
		ID:       uuid.NewString(),
		UserID:   from.ID,
		Username: from.Nickname,
		Content:  content,
		Kind:     kind,
		SentAt:   time.Now(),
	}
	r.appendMessageLocked(msg)
	return msg
}

func (r *Room) AddSystemMessage(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systemMessageLocked(content)
}

// ChangePhase switches the active phase unconditionally. Any pending
// auto-advance is cancelled first so a stale timer cannot clobber a manual
// transition.
func (r *Room) ChangePhase(to Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopListingTimerLocked()
	r.changePhaseLocked(to)
}

// ScheduleAutoAdvance arms a delayed from->to transition on the room. The
// callback only fires the transition if the room is still in `from`.
func (r *Room) ScheduleAutoAdvance(d time.Duration, from, to Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopListingTimerLocked()
	r.listingTimer = time.AfterFunc(d, func() {
		r.advanceIf(from, to)
	})
}

func (r *Room) advanceIf(from, to Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listingTimer = nil
	if r.phase != from {
		return
	}
	r.changePhaseLocked(to)
}

func (r *Room) stopListingTimerLocked() {
	if r.listingTimer != nil {
		r.listingTimer.Stop()
		r.listingTimer = nil
	}
}

func (r *Room) changePhaseLocked(to Phase) {
	r.phase = to
	r.systemMessageLocked(fmt.Sprintf("Room phase changed to: %s", to.DisplayName()))
}

func (r *Room) systemMessageLocked(content string) {
	r.appendMessageLocked(Message{
		ID:       uuid.NewString(),
		UserID:   "system",
		Username: "system",
		Content:  content,
		Kind:     MessageSystem,
		SentAt:   time.Now(),
	})
}

func (r *Room) appendMessageLocked(msg Message) {
	r.messages = append(r.messages, msg)
	if r.notify != nil {
		r.notify(msg)
	}
}

func (r *Room) ParticipantsSnapshot() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	return out
}

func (r *Room) SeatsSnapshot() []SeatInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SeatInfo, 0, len(r.microphones))
	for _, mic := range r.microphones {
		info := SeatInfo{
			SeatNumber: mic.SeatNumber,
			Status:     mic.Status,
			Locked:     mic.Locked,
		}
		if mic.Occupant != nil {
			info.OccupantID = mic.Occupant.ID
			info.OccupantName = mic.Occupant.Nickname
		}
		out = append(out, info)
	}
	return out
}

func (r *Room) MessagesSnapshot() []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *Room) BidHistorySnapshot() []Bid {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Bid, len(r.bidHistory))
	copy(out, r.bidHistory)
	return out
}
