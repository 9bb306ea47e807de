package telemetry

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/connectbox-tools/connectbox-agent/internal/constants"
	"github.com/connectbox-tools/connectbox-agent/internal/entities"
	"github.com/connectbox-tools/connectbox-agent/internal/xmldoc"
)

// The box encodes the remaining lease as four colon separated fields.
// The leading field is always read as zero no matter what the box put
// there; known firmware quirk, kept as is.
var leaseTimePattern = regexp.MustCompile(`^\d+:(\d{1,2}):(\d{1,2}):(\d{1,2})$`)

// FetchDevices replaces the stored LAN client list.
func (s *Service) FetchDevices() ([]entities.Device, error) {
	if err := s.session.EnsureAuthenticated(); err != nil {
		return nil, fmt.Errorf("FetchDevices: %w", err)
	}

	s.devices = nil
	raw, err := s.session.Get(constants.FunDevices)
	if err != nil {
		return nil, fmt.Errorf("FetchDevices: %w", err)
	}

	devices, err := decodeDevices(raw)
	if err != nil {
		return nil, s.noData("FetchDevices", err)
	}

	s.devices = devices
	return devices, nil
}

// decodeDevices zips the parallel per-field tag lists the firmware
// emits. Unequal list lengths truncate to the shortest list.
func decodeDevices(raw string) ([]entities.Device, error) {
	root, err := xmldoc.Parse(raw)
	if err != nil {
		return nil, err
	}

	var (
		macs         = root.IterTexts("MACAddr")
		hostnames    = root.IterTexts("hostname")
		ips          = root.IterTexts("IPv4Addr")
		interfaces   = root.IterTexts("interface")
		speeds       = root.IterTexts("speed")
		interfaceIDs = root.IterTexts("interfaceid")
		methods      = root.IterTexts("method")
		leaseTimes   = root.IterTexts("leaseTime")
	)

	count := len(macs)
	for _, list := range [][]string{hostnames, ips, interfaces, speeds, interfaceIDs, methods, leaseTimes} {
		count = min(count, len(list))
	}

	devices := make([]entities.Device, 0, count)
	for i := 0; i < count; i++ {
		// addresses may carry a /prefix suffix
		addr, _, _ := strings.Cut(ips[i], "/")
		ip, err := netip.ParseAddr(addr)
		if err != nil {
			return nil, fmt.Errorf("decodeDevices: %w", err)
		}

		speed, err := strconv.Atoi(strings.TrimSpace(speeds[i]))
		if err != nil {
			return nil, fmt.Errorf("decodeDevices: speed: %w", err)
		}

		interfaceID, err := strconv.Atoi(strings.TrimSpace(interfaceIDs[i]))
		if err != nil {
			return nil, fmt.Errorf("decodeDevices: interfaceid: %w", err)
		}

		method, err := strconv.Atoi(strings.TrimSpace(methods[i]))
		if err != nil {
			return nil, fmt.Errorf("decodeDevices: method: %w", err)
		}

		leaseTime, err := parseLeaseTime(leaseTimes[i])
		if err != nil {
			return nil, fmt.Errorf("decodeDevices: %w", err)
		}

		devices = append(devices, entities.Device{
			MAC:         macs[i],
			Hostname:    hostnames[i],
			IP:          ip,
			Interface:   interfaces[i],
			Speed:       speed,
			InterfaceID: interfaceID,
			Method:      method,
			LeaseTime:   leaseTime,
		})
	}

	return devices, nil
}

func parseLeaseTime(text string) (time.Duration, error) {
	match := leaseTimePattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return 0, fmt.Errorf("parseLeaseTime: invalid lease time %q", text)
	}

	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	seconds, _ := strconv.Atoi(match[3])

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second, nil
}
