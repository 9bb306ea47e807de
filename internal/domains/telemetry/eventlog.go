package telemetry

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/connectbox-tools/connectbox-agent/internal/constants"
	"github.com/connectbox-tools/connectbox-agent/internal/entities"
	"github.com/connectbox-tools/connectbox-agent/internal/xmldoc"
)

// FetchEventLog replaces the stored eventlog, sorted by epoch ascending.
func (s *Service) FetchEventLog() ([]entities.LogEvent, error) {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return nil, fmt.Errorf("FetchEventLog: %w", err)
	}

	s.eventLog = nil
	raw, err := s.session.Get(constants.FunEventLog)
	if err != nil {
		return nil, fmt.Errorf("FetchEventLog: %w", err)
	}

	events, err := decodeEventLog(raw)
	if err != nil {
		return nil, s.noData("FetchEventLog", err)
	}

	s.eventLog = events
	return events, nil
}

func decodeEventLog(raw string) ([]entities.LogEvent, error) {
	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, err
	}

	var events []entities.LogEvent
	for _, element := range root.Iter("eventlog") {
		decode := fieldDecoder{element: element}
		event := entities.LogEvent{
			Priority: decode.str("prior"),
			Message:  decode.str("text"),
			Time:     decode.str("time"),
			Epoch:    int64(decode.int("t")),
		}
		if decode.err != nil {
			return nil, fmt.Errorf("decodeEventLog: %w", decode.err)
		}

		events = append(events, event)
	}

	slices.SortFunc(events, func(a, b entities.LogEvent) int {
		return cmp.Compare(a.Epoch, b.Epoch)
	})

	return events, nil
}
