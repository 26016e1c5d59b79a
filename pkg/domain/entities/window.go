package entities

import "fmt"

// AnalysisWindow is an inclusive day range used to window trend metrics
type AnalysisWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewAnalysisWindow creates a validated AnalysisWindow
func NewAnalysisWindow(start, end int) (AnalysisWindow, error) {
	if start > end {
		return AnalysisWindow{}, fmt.Errorf("window start (%d) cannot be after end (%d)", start, end)
	}
	return AnalysisWindow{Start: start, End: end}, nil
}

// Contains reports whether day falls inside the window, bounds included
func (w AnalysisWindow) Contains(day int) bool {
	return day >= w.Start && day <= w.End
}

// Days returns the number of days covered by the window
func (w AnalysisWindow) Days() int {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start + 1
}

func (w AnalysisWindow) String() string {
	return fmt.Sprintf("[%d, %d]", w.Start, w.End)
}
