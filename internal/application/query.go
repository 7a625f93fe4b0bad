package application

const (
	DefaultJournalLimit = 100
	MaxJournalLimit     = 1000
)

type JournalQueryFilter struct {
	ChainID  *uint64
	Contract string
	Sender   string
	Method   string
	Limit    int
}

// normalize clamps the limit into [1, MaxJournalLimit].
func (f JournalQueryFilter) normalize() JournalQueryFilter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultJournalLimit
	case f.Limit > MaxJournalLimit:
		f.Limit = MaxJournalLimit
	}
	return f
}
