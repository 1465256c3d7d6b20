package domain

import "time"

// Status is the lifecycle of a run.
type Status string

const (
	StatusRunning  Status = "running"  // Rules still apply
	StatusAccepted Status = "accepted" // No rule applies and the state is final
	StatusRejected Status = "rejected" // No rule applies and the state is not final
	StatusHalted   Status = "halted"   // Stopped from outside the formal model (see HaltReason)
)

// HaltReason qualifies a terminal status that was not reached by the formal model alone.
type HaltReason string

const (
	ReasonStepLimitExceeded HaltReason = "step_limit_exceeded"
	// ReasonLeftBoundary marks a rejection caused by moving off the left end of a left-bounded tape.
	ReasonLeftBoundary HaltReason = "left_boundary"
)

// Result is the terminal outcome of a run.
type Result struct {
	Outcome    Status     `json:"outcome"`
	Reason     HaltReason `json:"reason,omitempty"`
	FinalState State      `json:"final_state"`
	Steps      int        `json:"steps"`
	Blank      Symbol     `json:"blank_symbol"`
	Tape       Snapshot   `json:"tape"`
	Trace      Trace      `json:"trace"`
}

// Accepted reports whether the machine accepted the input.
func (r *Result) Accepted() bool {
	return r.Outcome == StatusAccepted
}

// Output returns the final tape without surrounding blanks.
// Computation-style machines publish their result this way.
func (r *Result) Output() string {
	return Join(r.Tape.Trim(r.Blank))
}

// Record is a stored run.
type Record struct {
	ID        string    `json:"id"`
	Machine   string    `json:"machine,omitempty"`
	Input     string    `json:"input"`
	Result    *Result   `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Tape = r.Tape.Clone()
	out.Trace = r.Trace.Clone()
	return &out
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Result = r.Result.Clone()
	return &out
}
