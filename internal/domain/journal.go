package domain

import "time"

// JournalEntry records a mined contract mutation issued through the service.
type JournalEntry struct {
	ChainID     uint64            `json:"chainId"`
	TxHash      string            `json:"txHash"`
	Contract    string            `json:"contract"`
	Method      string            `json:"method"`
	Sender      string            `json:"sender"`
	Event       string            `json:"event"`
	Args        map[string]string `json:"args"`
	BlockNumber uint64            `json:"blockNumber"`
	CreatedAt   time.Time         `json:"createdAt"`
}
