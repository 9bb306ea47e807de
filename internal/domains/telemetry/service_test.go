package telemetry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectbox-tools/connectbox-agent/internal/domains/telemetry"
	"github.com/connectbox-tools/connectbox-agent/internal/errs"
)

// stubSession satisfies telemetry.ISessionService without a device.
type stubSession struct {
	raw    string
	getErr error

	token        string
	ensureCalls  int
	refreshCalls int
	getCalls     []int
	invalidated  bool
}

func (s *stubSession) EnsureAuthenticated() error {
	s.ensureCalls++
	if s.token == "" {
		s.token = "stub-token"
	}
	return nil
}

func (s *stubSession) RefreshToken() error {
	s.refreshCalls++
	s.token = "stub-token"
	return nil
}

func (s *stubSession) Token() string { return s.token }

func (s *stubSession) Invalidate() {
	s.invalidated = true
	s.token = ""
}

func (s *stubSession) Host() string { return "192.168.0.1" }

func (s *stubSession) Get(fun int) (string, error) {
	s.getCalls = append(s.getCalls, fun)
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.raw, nil
}

const devicesXML = `<LanUserTable>
	<Ethernet>
		<clientinfo>
			<interface>eth0</interface>
			<IPv4Addr>192.168.0.10/24</IPv4Addr>
			<interfaceid>2</interfaceid>
			<hostname>pc-one</hostname>
			<MACAddr>AA:BB:CC:DD:EE:01</MACAddr>
			<method>1</method>
			<leaseTime>00:02:30:00</leaseTime>
			<speed>1000</speed>
		</clientinfo>
		<clientinfo>
			<interface>eth1</interface>
			<IPv4Addr>2001:db8::5</IPv4Addr>
			<interfaceid>3</interfaceid>
			<hostname>pc-two</hostname>
			<MACAddr>AA:BB:CC:DD:EE:02</MACAddr>
			<method>2</method>
			<leaseTime>52:03:00:09</leaseTime>
			<speed>100</speed>
		</clientinfo>
	</Ethernet>
</LanUserTable>`

func TestService_FetchDevices(t *testing.T) {
	t.Parallel()

	stub := &stubSession{raw: devicesXML}
	service := telemetry.NewService(stub)

	devices, err := service.FetchDevices()
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "AA:BB:CC:DD:EE:01", devices[0].MAC)
	assert.Equal(t, "pc-one", devices[0].Hostname)
	// prefix suffix is stripped off the address
	assert.Equal(t, "192.168.0.10", devices[0].IP.String())
	assert.Equal(t, "eth0", devices[0].Interface)
	assert.Equal(t, 1000, devices[0].Speed)
	assert.Equal(t, 2, devices[0].InterfaceID)
	assert.Equal(t, 1, devices[0].Method)
	assert.Equal(t, 2*time.Hour+30*time.Minute, devices[0].LeaseTime)

	assert.Equal(t, "2001:db8::5", devices[1].IP.String())
	// the leading lease field reads as zero whatever the box sent
	assert.Equal(t, 3*time.Hour+9*time.Second, devices[1].LeaseTime)

	assert.Equal(t, devices, service.Devices())
	assert.Equal(t, 1, stub.ensureCalls)
}

func TestService_FetchDevices_TruncatesToShortestList(t *testing.T) {
	t.Parallel()

	// three MACs but only two of every other field
	raw := `<LanUserTable>
		<MACAddr>AA:BB:CC:DD:EE:01</MACAddr>
		<MACAddr>AA:BB:CC:DD:EE:02</MACAddr>
		<MACAddr>AA:BB:CC:DD:EE:03</MACAddr>
		<hostname>one</hostname><hostname>two</hostname>
		<IPv4Addr>192.168.0.10</IPv4Addr><IPv4Addr>192.168.0.11</IPv4Addr>
		<interface>eth0</interface><interface>eth0</interface>
		<speed>100</speed><speed>100</speed>
		<interfaceid>2</interfaceid><interfaceid>2</interfaceid>
		<method>1</method><method>1</method>
		<leaseTime>00:01:00:00</leaseTime><leaseTime>00:01:00:00</leaseTime>
	</LanUserTable>`

	service := telemetry.NewService(&stubSession{raw: raw})

	devices, err := service.FetchDevices()
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "AA:BB:CC:DD:EE:01", devices[0].MAC)
	assert.Equal(t, "AA:BB:CC:DD:EE:02", devices[1].MAC)
}

func TestService_FetchDevices_MalformedPayload(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name string
		raw  string
	}{
		{name: "not xml", raw: "please login first"},
		{name: "bad ip", raw: "<r><MACAddr>m</MACAddr><hostname>h</hostname><IPv4Addr>nope</IPv4Addr><interface>e</interface><speed>1</speed><interfaceid>1</interfaceid><method>1</method><leaseTime>00:01:00:00</leaseTime></r>"},
		{name: "bad speed", raw: "<r><MACAddr>m</MACAddr><hostname>h</hostname><IPv4Addr>192.168.0.2</IPv4Addr><interface>e</interface><speed>fast</speed><interfaceid>1</interfaceid><method>1</method><leaseTime>00:01:00:00</leaseTime></r>"},
		{name: "bad lease", raw: "<r><MACAddr>m</MACAddr><hostname>h</hostname><IPv4Addr>192.168.0.2</IPv4Addr><interface>e</interface><speed>1</speed><interfaceid>1</interfaceid><method>1</method><leaseTime>soon</leaseTime></r>"},
	}

	for _, testCase := range testTable {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubSession{raw: testCase.raw}
			service := telemetry.NewService(stub)

			_, err := service.FetchDevices()
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrNoData)
			assert.True(t, stub.invalidated)
			assert.Empty(t, service.Devices())
		})
	}
}

const downstreamXML = `<downstream_table>
	<downstream>
		<freq>602000000</freq>
		<pow>10</pow>
		<mod>256qam</mod>
		<chid>25</chid>
		<RxMER>40.5</RxMER>
		<PreRs>1234</PreRs>
		<PostRs>5</PostRs>
		<IsQamLocked>1</IsQamLocked>
		<IsFECLocked>1</IsFECLocked>
		<IsMpegLocked>0</IsMpegLocked>
	</downstream>
</downstream_table>`

func TestService_FetchDownstream(t *testing.T) {
	t.Parallel()

	service := telemetry.NewService(&stubSession{raw: downstreamXML})

	channels, err := service.FetchDownstream()
	require.NoError(t, err)
	require.Len(t, channels, 1)

	assert.Equal(t, 602000000, channels[0].Frequency)
	assert.Equal(t, 10, channels[0].PowerLevel)
	assert.Equal(t, "256qam", channels[0].Modulation)
	assert.Equal(t, "25", channels[0].ID)
	assert.InDelta(t, 40.5, channels[0].SNR, 0.0001)
	assert.Equal(t, 1234, channels[0].PreRS)
	assert.True(t, channels[0].QamLocked)
	assert.True(t, channels[0].FECLocked)
	assert.False(t, channels[0].MpegLocked)
}

const upstreamXML = `<upstream_table>
	<upstream>
		<freq>36000000</freq>
		<power>45</power>
		<srate>5.120</srate>
		<usid>3</usid>
		<mod>64qam</mod>
		<ustype>3</ustype>
		<t1Timeouts>0</t1Timeouts>
		<t2Timeouts>0</t2Timeouts>
		<t3Timeouts>2</t3Timeouts>
		<t4Timeouts>0</t4Timeouts>
		<channeltype>ATDMA</channeltype>
		<messageType>51</messageType>
	</upstream>
</upstream_table>`

func TestService_FetchUpstream(t *testing.T) {
	t.Parallel()

	service := telemetry.NewService(&stubSession{raw: upstreamXML})

	channels, err := service.FetchUpstream()
	require.NoError(t, err)
	require.Len(t, channels, 1)

	assert.Equal(t, 36000000, channels[0].Frequency)
	assert.Equal(t, "5.120", channels[0].SymbolRate)
	assert.Equal(t, "3", channels[0].ID)
	assert.Equal(t, 2, channels[0].T3Timeouts)
	assert.Equal(t, "ATDMA", channels[0].ChannelType)
	assert.Equal(t, 51, channels[0].MessageType)
}

func TestService_FetchTemperature(t *testing.T) {
	t.Parallel()

	raw := "<status><TunnerTemperature>100</TunnerTemperature><Temperature>32</Temperature></status>"
	service := telemetry.NewService(&stubSession{raw: raw})

	temperature, err := service.FetchTemperature()
	require.NoError(t, err)
	assert.InDelta(t, 37.78, temperature.TunerTemperature, 0.01)
	assert.InDelta(t, 0.0, temperature.Temperature, 0.0001)
}

func cmStatusXML(direction string) string {
	return `<cmstatus>
		<provisioning_st>Online</provisioning_st>
		<cm_comment>OK</cm_comment>
		<cm_docsis_mode>DOCSIS 3.0</cm_docsis_mode>
		<cm_network_access>Allowed</cm_network_access>
		<NumberOfCpes>4</NumberOfCpes>
		<FileName>fw.bin</FileName>
		<dMaxCpes>6</dMaxCpes>
		<bpiEnable>1</bpiEnable>
		<serviceflow>
			<Sfid>100</Sfid>
			<pMaxTrafficRate>300000000</pMaxTrafficRate>
			<pMaxTrafficBurst>42600</pMaxTrafficBurst>
			<pMinReservedRate>0</pMinReservedRate>
			<pMaxConcatBurst>0</pMaxConcatBurst>
			<pSchedulingType>2</pSchedulingType>
			<direction>1</direction>
		</serviceflow>
		<serviceflow>
			<Sfid>101</Sfid>
			<pMaxTrafficRate>30000000</pMaxTrafficRate>
			<pMaxTrafficBurst>42600</pMaxTrafficBurst>
			<pMinReservedRate>0</pMinReservedRate>
			<pMaxConcatBurst>0</pMaxConcatBurst>
			<pSchedulingType>2</pSchedulingType>
			<direction>` + direction + `</direction>
		</serviceflow>
	</cmstatus>`
}

func TestService_FetchCmStatus(t *testing.T) {
	t.Parallel()

	service := telemetry.NewService(&stubSession{raw: cmStatusXML("2")})

	status, err := service.FetchCmStatus()
	require.NoError(t, err)

	assert.Equal(t, "Online", status.ProvisioningStatus)
	assert.Equal(t, "DOCSIS 3.0", status.CmDocsisMode)
	assert.Equal(t, 4, status.NumberOfCpes)
	assert.Equal(t, "fw.bin", status.FirmwareFilename)

	require.Len(t, service.DownstreamServiceFlows(), 1)
	require.Len(t, service.UpstreamServiceFlows(), 1)
	assert.Equal(t, 100, service.DownstreamServiceFlows()[0].ID)
	assert.Equal(t, 101, service.UpstreamServiceFlows()[0].ID)
}

func TestService_FetchCmStatus_BadFlowDirection(t *testing.T) {
	t.Parallel()

	stub := &stubSession{raw: cmStatusXML("3")}
	service := telemetry.NewService(stub)

	_, err := service.FetchCmStatus()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNoData)
	assert.True(t, stub.invalidated)

	// no partially decoded flows survive the failure
	assert.Empty(t, service.DownstreamServiceFlows())
	assert.Empty(t, service.UpstreamServiceFlows())
	assert.Nil(t, service.CmStatus())
}

func TestService_FetchEventLog_SortedByEpoch(t *testing.T) {
	t.Parallel()

	raw := `<eventlog_table>
		<eventlog><prior>error</prior><text>later</text><time>Thu 17:02</time><t>30</t></eventlog>
		<eventlog><prior>notice</prior><text>first</text><time>Thu 16:00</time><t>10</t></eventlog>
		<eventlog><prior>warning</prior><text>middle</text><time>Thu 16:30</time><t>20</t></eventlog>
	</eventlog_table>`
	service := telemetry.NewService(&stubSession{raw: raw})

	events, err := service.FetchEventLog()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []int64{10, 20, 30}, []int64{events[0].Epoch, events[1].Epoch, events[2].Epoch})
	assert.Equal(t, "first", events[0].Message)
}

func TestService_FetchLanStatus(t *testing.T) {
	t.Parallel()

	raw := "<lan><UPnP>1</UPnP><LanMAC>AA:BB:CC:00:00:01</LanMAC><LanIP>192.168.0.1</LanIP><LanIPv6>fe80::1</LanIPv6></lan>"
	service := telemetry.NewService(&stubSession{raw: raw})

	status, err := service.FetchLanStatus()
	require.NoError(t, err)
	assert.True(t, status.UpnpEnabled)
	assert.Equal(t, "AA:BB:CC:00:00:01", status.MAC)
	assert.Equal(t, "192.168.0.1", status.IP4)
	assert.Equal(t, "fe80::1", status.IP6)
}

func TestService_FetchWanStatus(t *testing.T) {
	t.Parallel()

	raw := "<wan><WanMAC>AA:BB:CC:00:00:02</WanMAC><WanIP>203.0.113.9</WanIP></wan>"
	service := telemetry.NewService(&stubSession{raw: raw})

	status, err := service.FetchWanStatus()
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC:00:00:02", status.MAC)
	assert.Equal(t, "203.0.113.9", status.IP4)
}

func TestService_FetchCmSystemInfo(t *testing.T) {
	t.Parallel()

	raw := "<info><cm_mac_addr>AA:BB:CC:00:00:03</cm_mac_addr><cm_serial_number>SN123</cm_serial_number><cm_network_access>Allowed</cm_network_access></info>"
	service := telemetry.NewService(&stubSession{raw: raw})

	info, err := service.FetchCmSystemInfo()
	require.NoError(t, err)
	assert.Equal(t, "SN123", info.Serial)
	assert.True(t, info.NetworkAccess)
}

func TestService_FetchGlobalSettings(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name              string
		raw               string
		expectedLoggedIn  bool
		expectedSwVersion *string
	}{
		{
			name:             "logged out without firmware version",
			raw:              "<settings><AccessLevel>0</AccessLevel><OperatorId>UPC</OperatorId><AccessDenied>NONE</AccessDenied></settings>",
			expectedLoggedIn: false,
		},
		{
			name:              "logged in with firmware version",
			raw:               "<settings><AccessLevel>1</AccessLevel><OperatorId>UPC</OperatorId><AccessDenied>NONE</AccessDenied><SwVersion>CH7465LG-NCIP-6.12.18.25</SwVersion></settings>",
			expectedLoggedIn:  true,
			expectedSwVersion: ptr("CH7465LG-NCIP-6.12.18.25"),
		},
	}

	for _, testCase := range testTable {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubSession{raw: testCase.raw}
			service := telemetry.NewService(stub)

			settings, err := service.FetchGlobalSettings()
			require.NoError(t, err)

			assert.Equal(t, testCase.expectedLoggedIn, settings.LoggedIn)
			assert.Equal(t, "UPC", settings.OperatorID)
			assert.False(t, settings.AccessDenied)
			assert.Equal(t, testCase.expectedSwVersion, settings.SwVersion)

			// reduced read: phase one only, never a password login
			assert.Equal(t, 1, stub.refreshCalls)
			assert.Zero(t, stub.ensureCalls)
		})
	}
}

func ptr(s string) *string {
	return &s
}
