package constants

const (
	MQSubjectPrefix = "connectbox"

	MQSubjectTelemetry = "telemetry"
	MQSubjectEvents    = "events"
)
