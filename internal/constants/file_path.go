package constants

const (
	DefaultLogfilePath = "/var/log/connectbox-agent/agent.log"
	DefaultHistoryPath = "/var/lib/connectbox-agent/history"
)
