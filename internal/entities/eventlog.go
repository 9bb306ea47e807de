package entities

// LogEvent is one row of the box eventlog table.
type LogEvent struct {
	Priority string `json:"priority"`
	Message  string `json:"message"`
	Time     string `json:"time"`
	Epoch    int64  `json:"epoch"`
}
