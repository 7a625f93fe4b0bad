package domain

// EventArg is a single decoded event argument.
type EventArg struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed"`
	Value   string `json:"value"`
}

// ContractEvent represents a decoded contract log.
type ContractEvent struct {
	Contract    string     `json:"contract"`
	Event       string     `json:"event"`
	TxHash      string     `json:"txHash"`
	BlockNumber uint64     `json:"blockNumber"`
	LogIndex    uint64     `json:"logIndex"`
	Args        []EventArg `json:"args"`
}

// Arg returns the stringified argument at position i, or an empty string.
func (e ContractEvent) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return e.Args[i].Value
}
