package telemetry

import (
	"fmt"

	"github.com/connectbox-tools/connectbox-agent/internal/constants"
	"github.com/connectbox-tools/connectbox-agent/internal/entities"
	"github.com/connectbox-tools/connectbox-agent/internal/xmldoc"
)

// Service flow direction values used by the firmware.
const (
	flowDirectionDownstream = 1
	flowDirectionUpstream   = 2
)

// FetchCmStatus replaces the stored modem status and both service flow
// lists. A bad flow direction fails the whole operation, the lists stay
// cleared rather than partially populated.
func (s *Service) FetchCmStatus() (*entities.CmStatus, error) {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return nil, fmt.Errorf("FetchCmStatus: %w", err)
	}

	s.cmStatus = nil
	s.downstreamFlows = nil
	s.upstreamFlows = nil
	raw, err := s.session.Get(constants.FunCmStatus)
	if err != nil {
		return nil, fmt.Errorf("FetchCmStatus: %w", err)
	}

	status, downstream, upstream, err := decodeCmStatus(raw)
	if err != nil {
		return nil, s.noData("FetchCmStatus", err)
	}

	s.cmStatus = status
	s.downstreamFlows = downstream
	s.upstreamFlows = upstream
	return status, nil
}

// FetchTemperature replaces the stored temperature reading, converted
// from the raw Fahrenheit integers to Celsius.
func (s *Service) FetchTemperature() (*entities.Temperature, error) {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return nil, fmt.Errorf("FetchTemperature: %w", err)
	}

	s.temperature = nil
	raw, err := s.session.Get(constants.FunTemperature)
	if err != nil {
		return nil, fmt.Errorf("FetchTemperature: %w", err)
	}

	temperature, err := decodeTemperature(raw)
	if err != nil {
		return nil, s.noData("FetchTemperature", err)
	}

	s.temperature = temperature
	return temperature, nil
}

// FetchLanStatus replaces the stored LAN gateway information.
func (s *Service) FetchLanStatus() (*entities.LanStatus, error) {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return nil, fmt.Errorf("FetchLanStatus: %w", err)
	}

	s.lanStatus = nil
	raw, err := s.session.Get(constants.FunLanStatus)
	if err != nil {
		return nil, fmt.Errorf("FetchLanStatus: %w", err)
	}

	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, s.noData("FetchLanStatus", err)
	}

	decode := fieldDecoder{element: root}
	status := &entities.LanStatus{
		UpnpEnabled: decode.flag("UPnP"),
		MAC:         decode.str("LanMAC"),
		IP4:         decode.str("LanIP"),
		IP6:         decode.str("LanIPv6"),
	}
	if decode.err != nil {
		return nil, s.noData("FetchLanStatus", decode.err)
	}

	s.lanStatus = status
	return status, nil
}

// FetchWanStatus replaces the stored WAN port information.
func (s *Service) FetchWanStatus() (*entities.WanStatus, error) {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return nil, fmt.Errorf("FetchWanStatus: %w", err)
	}

	s.wanStatus = nil
	raw, err := s.session.Get(constants.FunWanStatus)
	if err != nil {
		return nil, fmt.Errorf("FetchWanStatus: %w", err)
	}

	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, s.noData("FetchWanStatus", err)
	}

	decode := fieldDecoder{element: root}
	status := &entities.WanStatus{
		MAC: decode.str("WanMAC"),
		IP4: decode.str("WanIP"),
	}
	if decode.err != nil {
		return nil, s.noData("FetchWanStatus", decode.err)
	}

	s.wanStatus = status
	return status, nil
}

// FetchCmSystemInfo replaces the stored modem identity block.
func (s *Service) FetchCmSystemInfo() (*entities.CmSystemInfo, error) {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return nil, fmt.Errorf("FetchCmSystemInfo: %w", err)
	}

	s.cmSystemInfo = nil
	raw, err := s.session.Get(constants.FunCmSystemInfo)
	if err != nil {
		return nil, fmt.Errorf("FetchCmSystemInfo: %w", err)
	}

	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, s.noData("FetchCmSystemInfo", err)
	}

	decode := fieldDecoder{element: root}
	info := &entities.CmSystemInfo{
		MAC:           decode.str("cm_mac_addr"),
		Serial:        decode.str("cm_serial_number"),
		NetworkAccess: decode.str("cm_network_access") == "Allowed",
	}
	if decode.err != nil {
		return nil, s.noData("FetchCmSystemInfo", decode.err)
	}

	s.cmSystemInfo = info
	return info, nil
}

// FetchGlobalSettings reads the global settings block. It works with
// only phase one of the handshake, returning reduced information when
// nobody is logged in, so it never forces a password login.
func (s *Service) FetchGlobalSettings() (*entities.GlobalSettings, error) {
	if s.session.Token() == "" {
		if err := s.session.RefreshToken(); err != nil {
			return nil, fmt.Errorf("FetchGlobalSettings: %w", err)
		}
	}

	s.globalSettings = nil
	raw, err := s.session.Get(constants.FunGlobalSettings)
	if err != nil {
		return nil, fmt.Errorf("FetchGlobalSettings: %w", err)
	}

	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, s.noData("FetchGlobalSettings", err)
	}

	decode := fieldDecoder{element: root}
	settings := &entities.GlobalSettings{
		LoggedIn:   decode.flag("AccessLevel"),
		OperatorID: decode.str("OperatorId"),
		// NONE means nobody else holds the single device session
		AccessDenied: decode.str("AccessDenied") != "NONE",
	}
	if decode.err != nil {
		return nil, s.noData("FetchGlobalSettings", decode.err)
	}

	if element := root.Find("SwVersion"); element != nil {
		version := element.Text
		settings.SwVersion = &version
	}

	s.globalSettings = settings
	return settings, nil
}

func decodeCmStatus(raw string) (status *entities.CmStatus, downstream, upstream []entities.ServiceFlow, err error) {
	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, nil, nil, err
	}

	decode := fieldDecoder{element: root}
	status = &entities.CmStatus{
		ProvisioningStatus: decode.str("provisioning_st"),
		CmComment:          decode.str("cm_comment"),
		CmDocsisMode:       decode.str("cm_docsis_mode"),
		CmNetworkAccess:    decode.str("cm_network_access"),
		NumberOfCpes:       decode.int("NumberOfCpes"),
		FirmwareFilename:   decode.str("FileName"),
		DMaxCpes:           decode.int("dMaxCpes"),
		BpiEnable:          decode.int("bpiEnable"),
	}
	if decode.err != nil {
		return nil, nil, nil, decode.err
	}

	for _, element := range root.Iter("serviceflow") {
		flowDecode := fieldDecoder{element: element}
		flow := entities.ServiceFlow{
			ID:              flowDecode.int("Sfid"),
			MaxTrafficRate:  flowDecode.int("pMaxTrafficRate"),
			MaxTrafficBurst: flowDecode.int("pMaxTrafficBurst"),
			MinReservedRate: flowDecode.int("pMinReservedRate"),
			MaxConcatBurst:  flowDecode.int("pMaxConcatBurst"),
			SchedulingType:  flowDecode.int("pSchedulingType"),
		}
		direction := flowDecode.int("direction")
		if flowDecode.err != nil {
			return nil, nil, nil, flowDecode.err
		}

		switch direction {
		case flowDirectionDownstream:
			downstream = append(downstream, flow)
		case flowDirectionUpstream:
			upstream = append(upstream, flow)
		default:
			return nil, nil, nil, fmt.Errorf("decodeCmStatus: unknown service flow direction %d", direction)
		}
	}

	return status, downstream, upstream, nil
}

func decodeTemperature(raw string) (*entities.Temperature, error) {
	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, err
	}

	decode := fieldDecoder{element: root}
	tuner := decode.int("TunnerTemperature")
	temperature := decode.int("Temperature")
	if decode.err != nil {
		return nil, decode.err
	}

	return &entities.Temperature{
		TunerTemperature: fahrenheitToCelsius(tuner),
		Temperature:      fahrenheitToCelsius(temperature),
	}, nil
}

func fahrenheitToCelsius(f int) float64 {
	return (5.0 / 9) * (float64(f) - 32)
}
