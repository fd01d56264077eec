package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Gavel/internal/domain"
	"github.com/dkeye/Gavel/internal/permission"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	engine := permission.NewEngine(permission.DefaultRules()...)
	return NewManager(engine, Options{ListingDelay: 10 * time.Millisecond})
}

func requireKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()
	var re *domain.RoomError
	require.ErrorAs(t, err, &re)
	require.Equal(t, kind, re.Kind)
}

type fixture struct {
	manager    *Manager
	room       *domain.Room
	host       *domain.User
	auctioneer *domain.User
}

// newAuctionFixture builds a room with a seated auctioneer and an uploaded
// lot (start 100, increment 10), still in the preparing phase.
func newAuctionFixture(t *testing.T) fixture {
	t.Helper()
	req := require.New(t)
	m := newTestManager(t)

	host := &domain.User{ID: "host1", Nickname: "host", Role: domain.RoleHost}
	room, err := m.CreateRoom("auction night", host)
	req.NoError(err)

	auctioneer := &domain.User{ID: "auc1", Nickname: "auctioneer", Role: domain.RoleAuctioneer}
	m.JoinRoom(auctioneer, room)
	seat, err := m.ApplyForMicrophone(auctioneer, room)
	req.NoError(err)
	req.Equal(2, seat)

	req.NoError(m.UploadItem(auctioneer, room, "lucky number", "ends in 8888", 100, 10))

	return fixture{manager: m, room: room, host: host, auctioneer: auctioneer}
}

func startAndWait(t *testing.T, f fixture) {
	t.Helper()
	require.NoError(t, f.manager.StartAuction(f.host, f.room))
	require.Eventually(t, func() bool { return f.room.Phase() == domain.PhaseAuctioning }, time.Second, 2*time.Millisecond)
}

func TestCompleteAuctionFlow(t *testing.T) {
	req := require.New(t)
	f := newAuctionFixture(t)

	viewer := &domain.User{ID: "view1", Nickname: "viewer", Role: domain.RoleViewer}
	b1 := &domain.User{ID: "bid1", Nickname: "bidder one", Role: domain.RoleBidder}
	b2 := &domain.User{ID: "bid2", Nickname: "bidder two", Role: domain.RoleBidder}
	for _, u := range []*domain.User{viewer, b1, b2} {
		f.manager.JoinRoom(u, f.room)
	}

	startAndWait(t, f)

	// Viewers cannot bid
	err := f.manager.PlaceBid(viewer, f.room, 150)
	requireKind(t, err, domain.KindPermissionDenied)

	// Nor can the auctioneer, on their own lot
	err = f.manager.PlaceBid(f.auctioneer, f.room, 150)
	requireKind(t, err, domain.KindPermissionDenied)

	// Bidding moves the price monotonically
	req.NoError(f.manager.PlaceBid(b1, f.room, 120))
	req.Equal(int64(120), f.room.CurrentPrice())

	req.NoError(f.manager.PlaceBid(b2, f.room, 150))
	req.Equal(int64(150), f.room.CurrentPrice())
	req.Equal("bidder two", f.room.CurrentLeader())

	// Only the owner can drop the hammer
	err = f.manager.EndAuction(b1, f.room)
	requireKind(t, err, domain.KindPermissionDenied)

	req.NoError(f.manager.EndAuction(f.host, f.room))
	req.Equal(domain.PhaseClosed, f.room.Phase())

	sold := false
	for _, msg := range f.room.MessagesSnapshot() {
		if strings.Contains(msg.Content, "bidder two") && strings.Contains(msg.Content, "150") && msg.Kind == domain.MessageSystem {
			sold = true
		}
	}
	req.True(sold, "winning bid should be announced")
}

func TestBidBelowFloorIsDenied(t *testing.T) {
	f := newAuctionFixture(t)
	b1 := &domain.User{ID: "bid1", Nickname: "bidder one", Role: domain.RoleBidder}
	f.manager.JoinRoom(b1, f.room)
	startAndWait(t, f)

	// currentPrice=100, increment=10: the floor is 110
	err := f.manager.PlaceBid(b1, f.room, 109)
	requireKind(t, err, domain.KindPermissionDenied)
	require.Contains(t, err.Error(), "110")

	require.NoError(t, f.manager.PlaceBid(b1, f.room, 110))
}

func TestBidBeforeAuctionStartsIsDenied(t *testing.T) {
	f := newAuctionFixture(t)
	b1 := &domain.User{ID: "bid1", Nickname: "bidder one", Role: domain.RoleBidder}
	f.manager.JoinRoom(b1, f.room)

	// Still preparing
	err := f.manager.PlaceBid(b1, f.room, 150)
	requireKind(t, err, domain.KindPermissionDenied)
}

func TestStartAuctionGates(t *testing.T) {
	req := require.New(t)
	f := newAuctionFixture(t)
	b1 := &domain.User{ID: "bid1", Nickname: "bidder one", Role: domain.RoleBidder}
	f.manager.JoinRoom(b1, f.room)

	// Only the owner starts
	err := f.manager.StartAuction(b1, f.room)
	requireKind(t, err, domain.KindPermissionDenied)

	startAndWait(t, f)

	// Starting a running auction is denied by the phase rule
	err = f.manager.StartAuction(f.host, f.room)
	requireKind(t, err, domain.KindPermissionDenied)
	req.Equal(domain.PhaseAuctioning, f.room.Phase())
}

func TestUploadRequiresSeatAndPhase(t *testing.T) {
	req := require.New(t)
	m := newTestManager(t)
	host := &domain.User{ID: "host1", Nickname: "host", Role: domain.RoleHost}
	room, err := m.CreateRoom("upload test", host)
	req.NoError(err)

	offMic := &domain.User{ID: "auc1", Nickname: "auctioneer", Role: domain.RoleAuctioneer}
	m.JoinRoom(offMic, room)

	err = m.UploadItem(offMic, room, "lot", "", 0, 0)
	requireKind(t, err, domain.KindPermissionDenied)

	_, err = m.ApplyForMicrophone(offMic, room)
	req.NoError(err)
	req.NoError(m.UploadItem(offMic, room, "lot", "", 0, 0))

	// Defaults filled in for non-positive prices
	req.Equal(int64(100), room.Rules().StartPrice)
	req.Equal(int64(10), room.Rules().IncrementStep)
}

func TestMicrophoneLifecycle(t *testing.T) {
	req := require.New(t)
	f := newAuctionFixture(t)
	b1 := &domain.User{ID: "bid1", Nickname: "bidder one", Role: domain.RoleBidder}
	f.manager.JoinRoom(b1, f.room)

	// Leaving without a seat is an invalid state, not a permission problem
	err := f.manager.LeaveMicrophone(b1, f.room)
	requireKind(t, err, domain.KindInvalidState)

	seat, err := f.manager.ApplyForMicrophone(b1, f.room)
	req.NoError(err)
	req.Equal(3, seat)

	// Double apply is denied
	_, err = f.manager.ApplyForMicrophone(b1, f.room)
	requireKind(t, err, domain.KindPermissionDenied)

	req.NoError(f.manager.LeaveMicrophone(b1, f.room))
	req.False(b1.OnMicrophone)

	// Kicking: owner only
	err = f.manager.KickFromMicrophone(b1, f.auctioneer.ID, f.room)
	requireKind(t, err, domain.KindPermissionDenied)

	req.NoError(f.manager.KickFromMicrophone(f.host, f.auctioneer.ID, f.room))
	req.False(f.auctioneer.OnMicrophone)

	// Kicking someone who is not seated fails the operation itself
	err = f.manager.KickFromMicrophone(f.host, b1.ID, f.room)
	requireKind(t, err, domain.KindOperationFailed)
}

func TestAcceptMicrophoneRequest_SeatsTargetOnLockedSeat(t *testing.T) {
	req := require.New(t)
	f := newAuctionFixture(t)
	b1 := &domain.User{ID: "bid1", Nickname: "bidder one", Role: domain.RoleBidder}
	f.manager.JoinRoom(b1, f.room)

	// Vacate the locked owner seat, then assign it explicitly
	req.NoError(f.manager.LeaveMicrophone(f.host, f.room))
	err := f.manager.AcceptMicrophoneRequest(b1, b1, f.room, 1)
	requireKind(t, err, domain.KindPermissionDenied)

	req.NoError(f.manager.AcceptMicrophoneRequest(f.host, b1, f.room, 1))
	req.True(b1.OnMicrophone)
}

func TestVoiceAndMessages(t *testing.T) {
	req := require.New(t)
	f := newAuctionFixture(t)
	viewer := &domain.User{ID: "view1", Nickname: "viewer", Role: domain.RoleViewer}
	f.manager.JoinRoom(viewer, f.room)

	// Voice needs a seat
	err := f.manager.SendVoice(viewer, f.room)
	requireKind(t, err, domain.KindPermissionDenied)
	req.NoError(f.manager.SendVoice(f.auctioneer, f.room))

	// Muted users are blocked
	f.auctioneer.Muted = true
	err = f.manager.SendVoice(f.auctioneer, f.room)
	requireKind(t, err, domain.KindPermissionDenied)

	// Chat is open to everyone
	req.NoError(f.manager.SendMessage(viewer, f.room, "hello there"))
}

func TestEventsFeedReceivesMessages(t *testing.T) {
	req := require.New(t)
	f := newAuctionFixture(t)
	viewer := &domain.User{ID: "view1", Nickname: "viewer", Role: domain.RoleViewer}
	f.manager.JoinRoom(viewer, f.room)

	req.NoError(f.manager.SendMessage(viewer, f.room, "hello feed"))

	found := false
	for !found {
		select {
		case msg := <-f.manager.Events():
			if msg.Content == "hello feed" {
				found = true
			}
		case <-time.After(time.Second):
			t.Fatal("expected the chat message on the event feed")
		}
	}
}

func TestChangeRoleIsUngated(t *testing.T) {
	req := require.New(t)
	f := newAuctionFixture(t)
	viewer := &domain.User{ID: "view1", Nickname: "viewer", Role: domain.RoleViewer}
	f.manager.JoinRoom(viewer, f.room)
	startAndWait(t, f)

	err := f.manager.PlaceBid(viewer, f.room, 150)
	requireKind(t, err, domain.KindPermissionDenied)

	f.manager.ChangeRole(viewer, domain.RoleBidder)
	req.NoError(f.manager.PlaceBid(viewer, f.room, 150))
}

func TestRegistry(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	u := r.GetOrCreateUser("tok1")
	req.Equal(domain.RoleViewer, u.Role)
	req.Same(u, r.GetOrCreateUser("tok1"))

	req.True(r.UpdateNickname("tok1", "alice"))
	req.Equal("alice", u.Nickname)
	req.False(r.UpdateNickname("missing", "bob"))
	req.False(r.UpdateNickname("tok1", ""))

	got, ok := r.Get("tok1")
	req.True(ok)
	req.Same(u, got)
}
