package entities

// Filter schedule modes as reported in <time_mode>.
const (
	TimeModeAlways  = 0
	TimeModeGeneral = 1
	TimeModeDaily   = 2
)

type Ipv6FilterInstance struct {
	ID           int    `json:"id"`
	SrcAddr      string `json:"srcAddr"`
	SrcPrefix    int    `json:"srcPrefix"`
	DstAddr      string `json:"dstAddr"`
	DstPrefix    int    `json:"dstPrefix"`
	SrcPortStart int    `json:"srcPortStart"`
	SrcPortEnd   int    `json:"srcPortEnd"`
	DstPortStart int    `json:"dstPortStart"`
	DstPortEnd   int    `json:"dstPortEnd"`
	Protocol     int    `json:"protocol"`
	Allow        int    `json:"allow"`
	Enabled      int    `json:"enabled"`
}

// FiltersTimeMode is the schedule attached to the whole filter table.
// GeneralTime and DailyTime are nil when the box omits the section.
type FiltersTimeMode struct {
	TMode       int     `json:"tMode"`
	GeneralTime *string `json:"generalTime"`
	DailyTime   *string `json:"dailyTime"`
}

type FilterState struct {
	ID      int `json:"id"`
	Enabled int `json:"enabled"`
}
