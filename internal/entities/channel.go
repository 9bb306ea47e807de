package entities

type DownstreamChannel struct {
	Frequency  int     `json:"frequency"`
	PowerLevel int     `json:"powerLevel"`
	Modulation string  `json:"modulation"`
	ID         string  `json:"id"`
	SNR        float64 `json:"snr"`
	PreRS      int     `json:"preRs"`
	PostRS     int     `json:"postRs"`
	QamLocked  bool    `json:"qamLocked"`
	FECLocked  bool    `json:"fecLocked"`
	MpegLocked bool    `json:"mpegLocked"`
}

type UpstreamChannel struct {
	Frequency   int    `json:"frequency"`
	PowerLevel  int    `json:"powerLevel"`
	SymbolRate  string `json:"symbolRate"`
	ID          string `json:"id"`
	Modulation  string `json:"modulation"`
	Type        string `json:"type"`
	T1Timeouts  int    `json:"t1Timeouts"`
	T2Timeouts  int    `json:"t2Timeouts"`
	T3Timeouts  int    `json:"t3Timeouts"`
	T4Timeouts  int    `json:"t4Timeouts"`
	ChannelType string `json:"channelType"`
	MessageType int    `json:"messageType"`
}
