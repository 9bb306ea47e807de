package infrastructure

import (
	"sync"

	"github.com/connectbox-tools/connectbox-agent/internal/domains/session"
)

var (
	sessionService     *session.Service
	sessionServiceOnce sync.Once
)

// InjectSessionService is a singleton: the box allows one authenticated
// session, so every domain must share the same token holder.
func (k *Kernel) InjectSessionService() *session.Service {
	sessionServiceOnce.Do(func() {
		sessionService = session.NewService(k.env.Agent.Host, k.env.Agent.Password)
	})

	return sessionService
}
