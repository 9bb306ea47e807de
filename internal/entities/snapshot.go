package entities

import "time"

// TelemetrySnapshot aggregates one polling pass over the box.
type TelemetrySnapshot struct {
	CollectedAt time.Time           `json:"collectedAt"`
	Devices     []Device            `json:"devices"`
	Downstream  []DownstreamChannel `json:"downstream"`
	Upstream    []UpstreamChannel   `json:"upstream"`
	Temperature *Temperature        `json:"temperature"`
	CmStatus    *CmStatus           `json:"cmStatus"`
}
