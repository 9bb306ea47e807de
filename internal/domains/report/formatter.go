package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/connectbox-tools/connectbox-agent/internal/entities"
)

var (
	deviceHeader     = table.Row{"#", "MAC", "IP", "HOSTNAME", "INTERFACE", "SPEED", "LEASE"}
	downstreamHeader = table.Row{"#", "CHANNEL", "FREQ (HZ)", "POWER", "MODULATION", "SNR", "LOCKED"}
	upstreamHeader   = table.Row{"#", "CHANNEL", "FREQ (HZ)", "POWER", "MODULATION", "SYMBOL RATE", "T3", "T4"}
)

// FormatDevices renders the LAN client list as a pretty table.
func FormatDevices(devices []entities.Device) string {
	t := table.NewWriter()
	t.AppendHeader(deviceHeader)

	for i, device := range devices {
		t.AppendRow(table.Row{
			i + 1,
			device.MAC,
			device.IP.String(),
			device.Hostname,
			device.Interface,
			device.Speed,
			device.LeaseTime.String(),
		})
	}

	return t.Render()
}

func FormatDownstream(channels []entities.DownstreamChannel) string {
	t := table.NewWriter()
	t.AppendHeader(downstreamHeader)

	for i, channel := range channels {
		locked := fmt.Sprintf("qam=%t fec=%t mpeg=%t", channel.QamLocked, channel.FECLocked, channel.MpegLocked)
		t.AppendRow(table.Row{
			i + 1,
			channel.ID,
			channel.Frequency,
			channel.PowerLevel,
			channel.Modulation,
			channel.SNR,
			locked,
		})
	}

	return t.Render()
}

func FormatUpstream(channels []entities.UpstreamChannel) string {
	t := table.NewWriter()
	t.AppendHeader(upstreamHeader)

	for i, channel := range channels {
		t.AppendRow(table.Row{
			i + 1,
			channel.ID,
			channel.Frequency,
			channel.PowerLevel,
			channel.Modulation,
			channel.SymbolRate,
			channel.T3Timeouts,
			channel.T4Timeouts,
		})
	}

	return t.Render()
}
