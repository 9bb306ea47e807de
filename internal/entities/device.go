package entities

import (
	"net/netip"
	"time"
)

// Device is a single LAN client known to the box. Two devices are the
// same device when their MAC addresses match, the rest is descriptive.
type Device struct {
	MAC         string     `json:"mac"`
	Hostname    string     `json:"hostname"`
	IP          netip.Addr `json:"ip"`
	Interface   string     `json:"interface"`
	Speed       int        `json:"speed"`
	InterfaceID int        `json:"interfaceId"`
	Method      int        `json:"method"`
	// remaining DHCP lease time; the box never reports hours above zero
	LeaseTime time.Duration `json:"leaseTime"`
}
