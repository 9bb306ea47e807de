package constants

// Function codes of the Connect Box getter/setter web service.
const (
	FunGlobalSettings = 1
	FunCmSystemInfo   = 2
	FunReboot         = 8
	FunDownstream     = 10
	FunUpstream       = 11
	FunEventLog       = 13
	FunLogin          = 15
	FunLogout         = 16
	FunLanStatus      = 100
	FunWanStatus      = 107
	FunGetIpv6Filter  = 111
	FunSetIpv6Filter  = 112
	FunDevices        = 123
	FunTemperature    = 136
	FunCmStatus       = 144
)

const (
	DefaultHost = "192.168.0.1"

	LoginPagePath = "/common_page/login.html"
	GetterPath    = "/xml/getter.xml"
	SetterPath    = "/xml/setter.xml"

	SessionTokenCookie = "sessionToken"
)

const (
	FilePerm    = 0755
	LogFilePerm = 0644
)
