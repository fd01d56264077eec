package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/dkeye/Gavel/internal/app"
	"github.com/dkeye/Gavel/internal/domain"
)

type handlers struct {
	manager  *app.Manager
	registry *app.Registry
}

func (h *handlers) user(c *gin.Context) *domain.User {
	return h.registry.GetOrCreateUser(c.GetString("client_token"))
}

func (h *handlers) room(c *gin.Context) (*domain.Room, bool) {
	room, ok := h.manager.Room(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	}
	return room, ok
}

// writeRoomError maps error kinds onto HTTP statuses.
func writeRoomError(c *gin.Context, err error) {
	var re *domain.RoomError
	if !errors.As(err, &re) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	status := http.StatusInternalServerError
	switch re.Kind {
	case domain.KindPermissionDenied:
		status = http.StatusForbidden
	case domain.KindInvalidState:
		status = http.StatusConflict
	case domain.KindOperationFailed:
		status = http.StatusUnprocessableEntity
	case domain.KindInvalidInput:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": re.Reason, "kind": re.Kind.String()})
}

func (h *handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.manager.List()})
}

type createRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *handlers) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid name"})
		return
	}
	owner := h.user(c)
	h.manager.ChangeRole(owner, domain.RoleHost)
	room, err := h.manager.CreateRoom(req.Name, owner)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": room.ID(), "name": room.Name()})
}

type participantView struct {
	ID           domain.UserID `json:"id"`
	Nickname     string        `json:"nickname"`
	Role         domain.Role   `json:"role"`
	OnMicrophone bool          `json:"on_microphone"`
	Muted        bool          `json:"muted"`
}

func (h *handlers) roomSnapshot(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	participants := lo.Map(room.ParticipantsSnapshot(), func(u domain.User, _ int) participantView {
		return participantView{
			ID:           u.ID,
			Nickname:     u.Nickname,
			Role:         u.Role,
			OnMicrophone: u.OnMicrophone,
			Muted:        u.Muted,
		}
	})
	messages := lo.Map(room.MessagesSnapshot(), func(m domain.Message, _ int) gin.H {
		return gin.H{"kind": m.Kind.String(), "display": m.DisplayText(), "sent_at": m.SentAt}
	})
	c.JSON(http.StatusOK, gin.H{
		"id":            room.ID(),
		"name":          room.Name(),
		"phase":         room.Phase().String(),
		"description":   h.manager.PhaseDescription(room),
		"current_item":  room.CurrentItem(),
		"rules":         room.Rules(),
		"current_price": room.CurrentPrice(),
		"leader":        room.CurrentLeader(),
		"seats":         room.SeatsSnapshot(),
		"participants":  participants,
		"messages":      messages,
		"bid_history":   room.BidHistorySnapshot(),
	})
}

func (h *handlers) joinRoom(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	h.manager.JoinRoom(h.user(c), room)
	c.Status(http.StatusNoContent)
}

type uploadItemRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	StartPrice    int64  `json:"start_price"`
	IncrementStep int64  `json:"increment_step"`
}

func (h *handlers) uploadItem(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	var req uploadItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid item"})
		return
	}
	if err := h.manager.UploadItem(h.user(c), room, req.Name, req.Description, req.StartPrice, req.IncrementStep); err != nil {
		writeRoomError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) startAuction(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	if err := h.manager.StartAuction(h.user(c), room); err != nil {
		writeRoomError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type placeBidRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (h *handlers) placeBid(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid amount"})
		return
	}
	if err := h.manager.PlaceBid(h.user(c), room, req.Amount); err != nil {
		writeRoomError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_price": room.CurrentPrice(), "leader": room.CurrentLeader()})
}

func (h *handlers) endAuction(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	if err := h.manager.EndAuction(h.user(c), room); err != nil {
		writeRoomError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) applyForMicrophone(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	seat, err := h.manager.ApplyForMicrophone(h.user(c), room)
	if err != nil {
		writeRoomError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seat": seat})
}

func (h *handlers) leaveMicrophone(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	if err := h.manager.LeaveMicrophone(h.user(c), room); err != nil {
		writeRoomError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type acceptMicrophoneRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
	Seat         int    `json:"seat" binding:"required"`
}

func (h *handlers) acceptMicrophone(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	var req acceptMicrophoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing target or seat"})
		return
	}
	target, ok := room.GetUser(domain.UserID(req.TargetUserID))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "target user not in room"})
		return
	}
	if err := h.manager.AcceptMicrophoneRequest(h.user(c), target, room, req.Seat); err != nil {
		writeRoomError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seat": req.Seat})
}

type kickRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
}

func (h *handlers) kickFromMicrophone(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	var req kickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing target"})
		return
	}
	if err := h.manager.KickFromMicrophone(h.user(c), domain.UserID(req.TargetUserID), room); err != nil {
		writeRoomError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *handlers) sendMessage(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing content"})
		return
	}
	if err := h.manager.SendMessage(h.user(c), room, req.Content); err != nil {
		writeRoomError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) sendVoice(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	if err := h.manager.SendVoice(h.user(c), room); err != nil {
		writeRoomError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type profileRequest struct {
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

func (h *handlers) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile"})
		return
	}
	token := c.GetString("client_token")
	user := h.registry.GetOrCreateUser(token)
	if req.Nickname != "" && !h.registry.UpdateNickname(token, req.Nickname) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid nickname"})
		return
	}
	if req.Role != "" {
		role := domain.Role(req.Role)
		if !role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		h.manager.ChangeRole(user, role)
	}
	c.JSON(http.StatusOK, user)
}
