// Package app wires the permission engine and the lifecycle machine into a
// single authorized entry point for room operations.
package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gavel/internal/core"
	"github.com/dkeye/Gavel/internal/domain"
	"github.com/dkeye/Gavel/internal/permission"
)

// Options tunes a Manager. Zero values fall back to sane defaults.
type Options struct {
	SeatCount         int
	DefaultStartPrice int64
	DefaultIncrement  int64
	CountdownSeconds  int
	ListingDelay      time.Duration
	EventBuffer       int
}

func (o *Options) fill() {
	if o.SeatCount < 1 {
		o.SeatCount = domain.DefaultSeatCount
	}
	def := domain.DefaultRules()
	if o.DefaultStartPrice <= 0 {
		o.DefaultStartPrice = def.StartPrice
	}
	if o.DefaultIncrement <= 0 {
		o.DefaultIncrement = def.IncrementStep
	}
	if o.CountdownSeconds <= 0 {
		o.CountdownSeconds = def.CountdownSeconds
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 64
	}
}

// RoomInfo is a read-only room listing entry.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	Name        string        `json:"name"`
	Phase       string        `json:"phase"`
	OnlineCount int           `json:"online_count"`
}

// Manager is the orchestrator: every mutating request passes the permission
// engine first, then the lifecycle machine or a room mutator. Callers are
// expected to serialize mutations through it.
type Manager struct {
	engine  *permission.Engine
	machine *core.Machine
	opts    Options

	mu     sync.RWMutex
	rooms  map[domain.RoomID]*domain.Room
	events chan domain.Message
}

func NewManager(engine *permission.Engine, opts Options) *Manager {
	opts.fill()
	return &Manager{
		engine:  engine,
		machine: core.NewMachine(opts.ListingDelay),
		opts:    opts,
		rooms:   make(map[domain.RoomID]*domain.Room),
		events:  make(chan domain.Message, opts.EventBuffer),
	}
}

// Events exposes the room message feed. Publishing never blocks; messages
// are dropped when no consumer keeps up.
func (m *Manager) Events() <-chan domain.Message { return m.events }

func (m *Manager) publish(msg domain.Message) {
	select {
	case m.events <- msg:
	default:
		log.Warn().Str("module", "app.manager").Msg("event feed full, dropping message")
	}
}

// CreateRoom bootstraps a room; no permission check applies.
func (m *Manager) CreateRoom(name string, owner *domain.User) (*domain.Room, error) {
	room, err := domain.NewRoom(name, owner, m.opts.SeatCount)
	if err != nil {
		return nil, err
	}
	room.SetNotify(m.publish)
	m.mu.Lock()
	m.rooms[room.ID()] = room
	m.mu.Unlock()
	log.Info().
		Str("module", "app.manager").
		Str("room", string(room.ID())).
		Str("name", name).
		Str("owner", string(owner.ID)).
		Msg("room created")
	return room, nil
}

func (m *Manager) Room(id domain.RoomID) (*domain.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

func (m *Manager) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, RoomInfo{
			ID:          r.ID(),
			Name:        r.Name(),
			Phase:       r.Phase().String(),
			OnlineCount: r.OnlineCount(),
		})
	}
	return out
}

// check runs the permission engine and translates a denial into a RoomError.
func (m *Manager) check(action domain.Action, actor *domain.User, room *domain.Room, params permission.Params) *domain.RoomError {
	res := m.engine.Evaluate(permission.Context{
		Actor:  actor,
		Room:   room,
		Action: action,
		Params: params,
	})
	if !res.Allowed() {
		return domain.NewPermissionDenied(res.Reason())
	}
	return nil
}

// UploadItem puts a lot up for the coming auction. Non-positive prices fall
// back to the configured defaults.
func (m *Manager) UploadItem(user *domain.User, room *domain.Room, itemName, description string, startPrice, incrementStep int64) error {
	if err := m.check(domain.ActionUploadItem, user, room, permission.Params{}); err != nil {
		return err
	}
	if startPrice <= 0 {
		startPrice = m.opts.DefaultStartPrice
	}
	if incrementStep <= 0 {
		incrementStep = m.opts.DefaultIncrement
	}
	item := domain.AuctionItem{
		ID:             uuid.NewString(),
		Name:           itemName,
		Description:    description,
		AuctioneerID:   user.ID,
		AuctioneerName: user.Nickname,
	}
	rules := domain.AuctionRules{
		StartPrice:       startPrice,
		IncrementStep:    incrementStep,
		CountdownSeconds: m.opts.CountdownSeconds,
	}
	if !m.machine.UploadItem(room, item, rules) {
		return domain.NewOperationFailed("could not upload the lot")
	}
	return nil
}

func (m *Manager) StartAuction(user *domain.User, room *domain.Room) error {
	if err := m.check(domain.ActionStartAuction, user, room, permission.Params{}); err != nil {
		return err
	}
	if !m.machine.StartAuction(room) {
		return domain.NewOperationFailed("could not start the auction")
	}
	return nil
}

func (m *Manager) PlaceBid(user *domain.User, room *domain.Room, amount int64) error {
	if err := m.check(domain.ActionPlaceBid, user, room, permission.BidParams(amount)); err != nil {
		return err
	}
	if !m.machine.PlaceBid(room, user, amount) {
		return domain.NewOperationFailed("bid was not accepted")
	}
	return nil
}

func (m *Manager) EndAuction(user *domain.User, room *domain.Room) error {
	if err := m.check(domain.ActionForceEndAuction, user, room, permission.Params{}); err != nil {
		return err
	}
	if !m.machine.EndAuction(room) {
		return domain.NewOperationFailed("could not end the auction")
	}
	return nil
}

// ApplyForMicrophone claims the lowest free, unlocked seat and returns its
// number.
func (m *Manager) ApplyForMicrophone(user *domain.User, room *domain.Room) (int, error) {
	if err := m.check(domain.ActionApplyForMicrophone, user, room, permission.Params{}); err != nil {
		return 0, err
	}
	seat, ok := room.AvailableMicrophone()
	if !ok {
		return 0, domain.NewOperationFailed("no microphone seat available")
	}
	if !room.AssignMicrophone(user, seat) {
		return 0, domain.NewOperationFailed("could not take the seat")
	}
	return seat, nil
}

func (m *Manager) LeaveMicrophone(user *domain.User, room *domain.Room) error {
	if !user.OnMicrophone {
		return domain.NewInvalidState("you are not on a microphone seat")
	}
	room.RemoveMicrophone(user.ID)
	return nil
}

// AcceptMicrophoneRequest seats a user on an explicit seat, including
// locked empty seats. Owner only.
func (m *Manager) AcceptMicrophoneRequest(operator, target *domain.User, room *domain.Room, seatNumber int) error {
	if err := m.check(domain.ActionAcceptMicrophoneRequest, operator, room, permission.Params{}); err != nil {
		return err
	}
	if !room.AssignMicrophone(target, seatNumber) {
		return domain.NewOperationFailed("seat is not available")
	}
	return nil
}

func (m *Manager) KickFromMicrophone(operator *domain.User, targetUserID domain.UserID, room *domain.Room) error {
	if err := m.check(domain.ActionKickFromMicrophone, operator, room, permission.KickParams(targetUserID)); err != nil {
		return err
	}
	if !room.RemoveMicrophone(targetUserID) {
		return domain.NewOperationFailed("user is not on a microphone seat")
	}
	return nil
}

func (m *Manager) SendMessage(user *domain.User, room *domain.Room, content string) error {
	if err := m.check(domain.ActionSendMessage, user, room, permission.Params{}); err != nil {
		return err
	}
	room.AddMessage(user, content, domain.MessageText)
	return nil
}

// SendVoice authorizes a voice transmission. The media plane itself lives
// outside this module; approval is the whole job here.
func (m *Manager) SendVoice(user *domain.User, room *domain.Room) error {
	if err := m.check(domain.ActionSendVoice, user, room, permission.Params{}); err != nil {
		return err
	}
	log.Info().
		Str("module", "app.manager").
		Str("room", string(room.ID())).
		Str("user", string(user.ID)).
		Msg("voice transmission authorized")
	return nil
}

// JoinRoom is idempotent.
func (m *Manager) JoinRoom(user *domain.User, room *domain.Room) {
	room.AddUser(user)
}

// ChangeRole mutates the user's role directly. Deliberately ungated: it is
// an administrative bootstrap operation, not a room action.
func (m *Manager) ChangeRole(user *domain.User, newRole domain.Role) {
	user.Role = newRole
	log.Info().
		Str("module", "app.manager").
		Str("user", string(user.ID)).
		Str("role", string(newRole)).
		Msg("role changed")
}

// PhaseDescription proxies the machine's human-readable phase summary.
func (m *Manager) PhaseDescription(room *domain.Room) string {
	return m.machine.Describe(room.Phase())
}
