package deviceaction

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/connectbox-tools/connectbox-agent/internal/constants"
	"github.com/connectbox-tools/connectbox-agent/internal/domains/session"
)

type (
	ISessionService interface {
		EnsureAuthenticated() error
		Invalidate()
		Host() string
		Set(fun int, params session.Params) error
	}
)

// Service issues device-level actions against the box.
type Service struct {
	session ISessionService
}

func NewService(sessionService ISessionService) *Service {
	return &Service{
		session: sessionService,
	}
}

// Reboot asks the box to restart. The held token is dropped afterwards,
// the device invalidates every session while restarting.
func (s *Service) Reboot() error {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return fmt.Errorf("Reboot: %w", err)
	}

	log.Info().Str("host", s.session.Host()).Msg("Reboot: requesting device restart")
	if err := s.session.Set(constants.FunReboot, nil); err != nil {
		return fmt.Errorf("Reboot: %w", err)
	}

	s.session.Invalidate()
	return nil
}
