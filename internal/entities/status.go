package entities

type CmStatus struct {
	ProvisioningStatus string `json:"provisioningStatus"`
	CmComment          string `json:"cmComment"`
	CmDocsisMode       string `json:"cmDocsisMode"`
	CmNetworkAccess    string `json:"cmNetworkAccess"`
	FirmwareFilename   string `json:"firmwareFilename"`
	NumberOfCpes       int    `json:"numberOfCpes"`
	DMaxCpes           int    `json:"dMaxCpes"`
	BpiEnable          int    `json:"bpiEnable"`
}

// ServiceFlow is a DOCSIS QoS descriptor. Direction is not stored here,
// flows are partitioned into downstream/upstream lists on decode.
type ServiceFlow struct {
	ID              int `json:"id"`
	MaxTrafficRate  int `json:"maxTrafficRate"`
	MaxTrafficBurst int `json:"maxTrafficBurst"`
	MinReservedRate int `json:"minReservedRate"`
	MaxConcatBurst  int `json:"maxConcatBurst"`
	SchedulingType  int `json:"schedulingType"`
}

// Temperature readings in degrees Celsius.
type Temperature struct {
	TunerTemperature float64 `json:"tunerTemperature"`
	Temperature      float64 `json:"temperature"`
}

type LanStatus struct {
	UpnpEnabled bool   `json:"upnpEnabled"`
	MAC         string `json:"mac"`
	IP4         string `json:"ip4"`
	IP6         string `json:"ip6"`
}

type WanStatus struct {
	MAC string `json:"mac"`
	IP4 string `json:"ip4"`
}

type CmSystemInfo struct {
	MAC           string `json:"mac"`
	Serial        string `json:"serial"`
	NetworkAccess bool   `json:"networkAccess"`
}

type GlobalSettings struct {
	LoggedIn     bool    `json:"loggedIn"`
	OperatorID   string  `json:"operatorId"`
	AccessDenied bool    `json:"accessDenied"`
	SwVersion    *string `json:"swVersion"`
}
