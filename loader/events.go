package loader

const (
	StatusProgress = "progress"
	StatusComplete = "complete"
	StatusError    = "error"
)

// Event is one entry of the ordered progress stream of a load.
type Event struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Progress int      `json:"progress,omitempty"`
	Result   *Summary `json:"result,omitempty"`
}

// Summary is the completion payload.
type Summary struct {
	LoadID         string           `json:"load_id"`
	Filename       string           `json:"filename,omitempty"`
	Rows           int              `json:"rows"`
	Inserted       int              `json:"inserted"`
	Skipped        int              `json:"skipped"`
	Failed         int              `json:"failed"`
	SkippedDetails []SkipRecord     `json:"skipped_details"`
	Verification   Verification     `json:"verification"`
	NewDimensions  NewDimensionRows `json:"new_dimensions"`
	Diagnostics    Diagnostics      `json:"diagnostics"`

	Reconciliation *Reconciliation `json:"-"`
}

// SkipCounts groups skipped rows by reason, splitting duplicates by kind.
func (s *Summary) SkipCounts() map[string]int {
	counts := make(map[string]int)
	for _, skip := range s.SkippedDetails {
		reason := skip.Reason
		if skip.Kind != "" {
			reason += "/" + skip.Kind
		}
		counts[reason]++
	}
	return counts
}

// ProgressFunc receives events in order. It is called on the loading goroutine.
type ProgressFunc func(Event)

func (f ProgressFunc) emit(status, message string, progress int, result *Summary) {
	if f == nil {
		return
	}
	f(Event{Status: status, Message: message, Progress: progress, Result: result})
}
