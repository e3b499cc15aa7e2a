package harness

// Trace event types.
const (
	EventStep   = "step"
	EventCommit = "commit"
)

// TraceEvent is one entry of a scenario trace: either a shopper step or an
// engine commit that the step caused.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"` // "step" or "commit"

	// Step events.
	Do           string         `json:"do,omitempty"`
	Args         map[string]any `json:"args,omitempty"`
	Outcome      string         `json:"outcome,omitempty"`
	Error        string         `json:"error,omitempty"`
	CheckoutStep string         `json:"checkout_step,omitempty"`
	Charged      string         `json:"charged,omitempty"`

	// Commit events.
	Commit *Commit `json:"commit,omitempty"`
}

// Commit summarises one committed engine transition.
type Commit struct {
	Action    string `json:"action"`
	Version   int64  `json:"version"`
	CartLines int    `json:"cart_lines"`
	ItemCount int    `json:"item_count"`
	Orders    int    `json:"orders"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains steps and commits in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final state projection used by final_state assertions.
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addStep appends a step event and returns its index so the outcome can be
// filled in once the step has run.
func (r *Result) addStep(do string, args map[string]any) int {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:  int64(len(r.Trace) + 1),
		Type: EventStep,
		Do:   do,
		Args: args,
	})
	return len(r.Trace) - 1
}

// addCommit appends a commit event.
func (r *Result) addCommit(c Commit) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    int64(len(r.Trace) + 1),
		Type:   EventCommit,
		Commit: &c,
	})
}

// Commits returns the commit events in order.
func (r *Result) Commits() []Commit {
	var out []Commit
	for _, ev := range r.Trace {
		if ev.Type == EventCommit && ev.Commit != nil {
			out = append(out, *ev.Commit)
		}
	}
	return out
}
