// Package domain contains the auction room entities. Mutators preserve
// invariants but carry no orchestration or permission logic.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxNicknameLen = 36

var (
	ErrNicknameTooLong = errors.New("nickname too long")
	ErrNicknameEmpty   = errors.New("nickname empty")
)

// Role classifies what a participant is in the room.
type Role string

const (
	RoleHost       Role = "host"
	RoleAuctioneer Role = "auctioneer"
	RoleBidder     Role = "bidder"
	RoleViewer     Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleAuctioneer, RoleBidder, RoleViewer:
		return true
	}
	return false
}

type UserID string

// User is shared by reference between the room and its callers; the room
// never owns it.
type User struct {
	ID           UserID `json:"id"`
	Nickname     string `json:"nickname"`
	Role         Role   `json:"role"`
	OnMicrophone bool   `json:"on_microphone"`
	Muted        bool   `json:"muted"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(nickname string, role Role) (*User, error) {
	if len(nickname) == 0 {
		return nil, ErrNicknameEmpty
	}
	if len(nickname) > MaxNicknameLen {
		return nil, ErrNicknameTooLong
	}
	if !role.Valid() {
		role = RoleViewer
	}
	return &User{ID: UserID(uuid.NewString()), Nickname: nickname, Role: role}, nil
}
