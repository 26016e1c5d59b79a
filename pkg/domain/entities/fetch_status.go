package entities

// FetchStatus tracks where one fetched dataset is in its lifecycle
type FetchStatus int

const (
	Idle FetchStatus = iota
	Loading
	Loaded
	Failed
)

// String method for FetchStatus enum
func (s FetchStatus) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case Loaded:
		return "Loaded"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Settled reports whether the fetch has finished, successfully or not
func (s FetchStatus) Settled() bool {
	return s == Loaded || s == Failed
}

// MarshalText lets FetchStatus appear by name in JSON output
func (s FetchStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
