package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gavel/internal/domain"
)

// Registry maps transport client tokens to users. Users outlive any single
// room; the registry is their owner for the process lifetime.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*domain.User)}
}

// GetOrCreateUser resolves a client token to its user, creating a guest
// viewer on first sight.
func (r *Registry) GetOrCreateUser(token string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[token]; ok {
		return u
	}
	u := &domain.User{ID: domain.UserID(token), Nickname: "guest", Role: domain.RoleViewer}
	r.users[token] = u
	log.Info().Str("module", "app.registry").Str("token", token).Msg("created new user")
	return u
}

func (r *Registry) UpdateNickname(token, nickname string) bool {
	if len(nickname) == 0 || len(nickname) > domain.MaxNicknameLen {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[token]
	if !ok {
		return false
	}
	u.Nickname = nickname
	log.Info().Str("module", "app.registry").Str("token", token).Str("nickname", nickname).Msg("updated nickname")
	return true
}

func (r *Registry) Get(token string) (*domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[token]
	return u, ok
}
