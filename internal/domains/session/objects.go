package session

// Param is a single setter argument. The firmware rejects requests
// whose arguments arrive out of order, so parameters are carried as an
// ordered slice, never a map.
type Param struct {
	Key   string
	Value string
}

type Params []Param
