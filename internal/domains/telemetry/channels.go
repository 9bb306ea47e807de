package telemetry

import (
	"fmt"

	"github.com/connectbox-tools/connectbox-agent/internal/constants"
	"github.com/connectbox-tools/connectbox-agent/internal/entities"
	"github.com/connectbox-tools/connectbox-agent/internal/xmldoc"
)

// FetchDownstream replaces the stored downstream channel snapshot.
func (s *Service) FetchDownstream() ([]entities.DownstreamChannel, error) {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return nil, fmt.Errorf("FetchDownstream: %w", err)
	}

	s.dsChannels = nil
	raw, err := s.session.Get(constants.FunDownstream)
	if err != nil {
		return nil, fmt.Errorf("FetchDownstream: %w", err)
	}

	channels, err := decodeDownstream(raw)
	if err != nil {
		return nil, s.noData("FetchDownstream", err)
	}

	s.dsChannels = channels
	return channels, nil
}

// FetchUpstream replaces the stored upstream channel snapshot.
func (s *Service) FetchUpstream() ([]entities.UpstreamChannel, error) {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return nil, fmt.Errorf("FetchUpstream: %w", err)
	}

	s.usChannels = nil
	raw, err := s.session.Get(constants.FunUpstream)
	if err != nil {
		return nil, fmt.Errorf("FetchUpstream: %w", err)
	}

	channels, err := decodeUpstream(raw)
	if err != nil {
		return nil, s.noData("FetchUpstream", err)
	}

	s.usChannels = channels
	return channels, nil
}

func decodeDownstream(raw string) ([]entities.DownstreamChannel, error) {
	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, err
	}

	var channels []entities.DownstreamChannel
	for _, element := range root.Iter("downstream") {
		var (
			channel entities.DownstreamChannel
			decode  = fieldDecoder{element: element}
		)
		channel.Frequency = decode.int("freq")
		channel.PowerLevel = decode.int("pow")
		channel.Modulation = decode.str("mod")
		channel.ID = decode.str("chid")
		channel.SNR = decode.float("RxMER")
		channel.PreRS = decode.int("PreRs")
		channel.PostRS = decode.int("PostRs")
		channel.QamLocked = decode.flag("IsQamLocked")
		channel.FECLocked = decode.flag("IsFECLocked")
		channel.MpegLocked = decode.flag("IsMpegLocked")
		if decode.err != nil {
			return nil, fmt.Errorf("decodeDownstream: %w", decode.err)
		}

		channels = append(channels, channel)
	}

	return channels, nil
}

func decodeUpstream(raw string) ([]entities.UpstreamChannel, error) {
	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, err
	}

	var channels []entities.UpstreamChannel
	for _, element := range root.Iter("upstream") {
		var (
			channel entities.UpstreamChannel
			decode  = fieldDecoder{element: element}
		)
		channel.Frequency = decode.int("freq")
		channel.PowerLevel = decode.int("power")
		channel.SymbolRate = decode.str("srate")
		channel.ID = decode.str("usid")
		channel.Modulation = decode.str("mod")
		channel.Type = decode.str("ustype")
		channel.T1Timeouts = decode.int("t1Timeouts")
		channel.T2Timeouts = decode.int("t2Timeouts")
		channel.T3Timeouts = decode.int("t3Timeouts")
		channel.T4Timeouts = decode.int("t4Timeouts")
		channel.ChannelType = decode.str("channeltype")
		channel.MessageType = decode.int("messageType")
		if decode.err != nil {
			return nil, fmt.Errorf("decodeUpstream: %w", decode.err)
		}

		channels = append(channels, channel)
	}

	return channels, nil
}

// fieldDecoder accumulates per-field lookups against one element and
// keeps the first failure, so decode call sites stay flat.
type fieldDecoder struct {
	element *xmldoc.Element
	err     error
}

func (d *fieldDecoder) str(path string) string {
	if d.err != nil {
		return ""
	}

	var value string
	value, d.err = d.element.Str(path)
	return value
}

func (d *fieldDecoder) int(path string) int {
	if d.err != nil {
		return 0
	}

	var value int
	value, d.err = d.element.Int(path)
	return value
}

func (d *fieldDecoder) float(path string) float64 {
	if d.err != nil {
		return 0
	}

	var value float64
	value, d.err = d.element.Float(path)
	return value
}

func (d *fieldDecoder) flag(path string) bool {
	return d.str(path) == "1"
}
