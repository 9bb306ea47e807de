package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/connectbox-tools/connectbox-agent/internal/constants"
	"github.com/connectbox-tools/connectbox-agent/internal/domains/session"
	"github.com/connectbox-tools/connectbox-agent/internal/entities"
	"github.com/connectbox-tools/connectbox-agent/internal/errs"
	"github.com/connectbox-tools/connectbox-agent/internal/xmldoc"
)

type (
	ISessionService interface {
		EnsureAuthenticated() error
		Invalidate()
		Host() string
		Get(fun int) (string, error)
		Set(fun int, params session.Params) error
	}
)

// Service manages the IPv6 firewall rule table of the box.
type Service struct {
	session ISessionService

	filters  []entities.Ipv6FilterInstance
	timeMode *entities.FiltersTimeMode
}

func NewService(sessionService ISessionService) *Service {
	return &Service{
		session: sessionService,
	}
}

func (s *Service) Filters() []entities.Ipv6FilterInstance {
	return s.filters
}

func (s *Service) TimeMode() *entities.FiltersTimeMode {
	return s.timeMode
}

// FetchFiltering replaces the stored rule table and its schedule.
func (s *Service) FetchFiltering() ([]entities.Ipv6FilterInstance, error) {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return nil, fmt.Errorf("FetchFiltering: %w", err)
	}

	s.filters = nil
	s.timeMode = nil
	raw, err := s.session.Get(constants.FunGetIpv6Filter)
	if err != nil {
		return nil, fmt.Errorf("FetchFiltering: %w", err)
	}

	filters, timeMode, err := decodeFiltering(raw)
	if err != nil {
		log.Warn().Err(err).Str("host", s.session.Host()).Msg("FetchFiltering: malformed response")
		s.session.Invalidate()
		return nil, fmt.Errorf("FetchFiltering: %w: %v", errs.ErrNoData, err)
	}

	s.filters = filters
	s.timeMode = timeMode
	return filters, nil
}

// Toggle flips the enabled flag of the rule with the given id and
// resubmits the whole table; the firmware's set operation replaces the
// entire rule table, a partial update would wipe the other rules. An
// unknown id makes no network call and fails with ErrFilterNotFound.
func (s *Service) Toggle(id int) (enabled bool, err error) {
	if _, err = s.FetchFiltering(); err != nil {
		return false, fmt.Errorf("Toggle: %w", err)
	}

	states := lo.Map(s.filters, func(instance entities.Ipv6FilterInstance, _ int) entities.FilterState {
		return entities.FilterState{ID: instance.ID, Enabled: instance.Enabled}
	})

	var found bool
	for i, state := range states {
		if state.ID != id {
			continue
		}

		states[i].Enabled = 1 - state.Enabled
		enabled = states[i].Enabled == 1
		found = true
		break
	}

	if !found {
		log.Warn().Int("id", id).Msg("Toggle: filter not found")
		return false, fmt.Errorf("Toggle: id %d: %w", id, errs.ErrFilterNotFound)
	}

	if err = s.updateStates(states); err != nil {
		return false, fmt.Errorf("Toggle: %w", err)
	}

	return enabled, nil
}

// updateStates resubmits enable flags for the full table, with delete
// flags all zero and every rule id, plus the current schedule.
func (s *Service) updateStates(states []entities.FilterState) error {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return fmt.Errorf("updateStates: %w", err)
	}

	joined := func(render func(state entities.FilterState) string) string {
		return strings.Join(lo.Map(states, func(state entities.FilterState, _ int) string {
			return render(state)
		}), "*")
	}

	params := session.Params{
		{Key: "act", Value: "1"},
		{Key: "dir", Value: "0"},
		{Key: "enabled", Value: joined(func(state entities.FilterState) string {
			return strconv.Itoa(state.Enabled)
		})},
		{Key: "allow_traffic", Value: ""},
		{Key: "protocol", Value: ""},
		{Key: "src_addr", Value: ""},
		{Key: "src_prefix", Value: ""},
		{Key: "dst_addr", Value: ""},
		{Key: "dst_prefix", Value: ""},
		{Key: "ssport", Value: ""},
		{Key: "seport", Value: ""},
		{Key: "dsport", Value: ""},
		{Key: "deport", Value: ""},
		{Key: "del", Value: joined(func(entities.FilterState) string { return "0" })},
		{Key: "idd", Value: joined(func(state entities.FilterState) string {
			return strconv.Itoa(state.ID)
		})},
		{Key: "sIpRange", Value: ""},
		{Key: "dsIpRange", Value: ""},
		{Key: "PortRange", Value: ""},
		{Key: "TMode", Value: strconv.Itoa(s.timeMode.TMode)},
		{Key: "TRule", Value: s.scheduleRule()},
	}

	if err := s.session.Set(constants.FunSetIpv6Filter, params); err != nil {
		return fmt.Errorf("updateStates: %w", err)
	}

	return nil
}

func (s *Service) scheduleRule() string {
	switch s.timeMode.TMode {
	case entities.TimeModeGeneral:
		if s.timeMode.GeneralTime != nil {
			return *s.timeMode.GeneralTime
		}
	case entities.TimeModeDaily:
		if s.timeMode.DailyTime != nil {
			return *s.timeMode.DailyTime
		}
	}

	return "0"
}

func decodeFiltering(raw string) ([]entities.Ipv6FilterInstance, *entities.FiltersTimeMode, error) {
	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	var filters []entities.Ipv6FilterInstance
	for _, element := range root.Iter("instance") {
		instance, err := decodeInstance(element)
		if err != nil {
			return nil, nil, err
		}

		filters = append(filters, instance)
	}

	tMode, err := root.Int("time_mode")
	if err != nil {
		return nil, nil, err
	}

	generalTime, err := parseGeneralTime(root)
	if err != nil {
		return nil, nil, err
	}

	dailyTime, err := parseDailyTime(root)
	if err != nil {
		return nil, nil, err
	}

	return filters, &entities.FiltersTimeMode{
		TMode:       tMode,
		GeneralTime: generalTime,
		DailyTime:   dailyTime,
	}, nil
}

func decodeInstance(element *xmldoc.Element) (instance entities.Ipv6FilterInstance, err error) {
	fields := []struct {
		path   string
		target *int
	}{
		{path: "idd", target: &instance.ID},
		{path: "src_prefix", target: &instance.SrcPrefix},
		{path: "dst_prefix", target: &instance.DstPrefix},
		{path: "src_sport", target: &instance.SrcPortStart},
		{path: "src_eport", target: &instance.SrcPortEnd},
		{path: "dst_sport", target: &instance.DstPortStart},
		{path: "dst_eport", target: &instance.DstPortEnd},
		{path: "protocol", target: &instance.Protocol},
		{path: "allow", target: &instance.Allow},
		{path: "enabled", target: &instance.Enabled},
	}
	for _, field := range fields {
		if *field.target, err = element.Int(field.path); err != nil {
			return instance, fmt.Errorf("decodeInstance: %w", err)
		}
	}

	if instance.SrcAddr, err = element.Str("src_addr"); err != nil {
		return instance, fmt.Errorf("decodeInstance: %w", err)
	}
	if instance.DstAddr, err = element.Str("dst_addr"); err != nil {
		return instance, fmt.Errorf("decodeInstance: %w", err)
	}

	return instance, nil
}
