package core

import "encoding/json"

// RunResult is the single terminal artifact of a run. It is constructed
// exactly once per run, on every exit path, and is immutable afterwards.
type RunResult struct {
	Success   bool             `json:"success"`
	Report    string           `json:"report"`
	ToolCalls []ToolCallRecord `json:"toolCallsMade"`
	AgentType string           `json:"agentType"`
}

// Failure builds the uniform failed-run shape, preserving whatever call
// log was accumulated before the error.
func Failure(role string, err error, calls []ToolCallRecord) RunResult {
	return RunResult{
		Success:   false,
		Report:    "Agent encountered an error: " + err.Error(),
		ToolCalls: calls,
		AgentType: role,
	}
}

// ToolCallsMade returns the formatted wire strings of the call log.
func (r RunResult) ToolCallsMade() []string {
	out := make([]string, len(r.ToolCalls))
	for i, c := range r.ToolCalls {
		out[i] = c.Format()
	}
	return out
}

// MarshalJSON emits an empty list, never null, for a run that made no
// tool calls.
func (r RunResult) MarshalJSON() ([]byte, error) {
	type alias RunResult
	a := alias(r)
	if a.ToolCalls == nil {
		a.ToolCalls = []ToolCallRecord{}
	}
	return json.Marshal(a)
}

// UnmarshalJSON restores call ordinals from list position; they are not
// carried on the wire.
func (r *RunResult) UnmarshalJSON(data []byte) error {
	type alias RunResult
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	for i := range a.ToolCalls {
		a.ToolCalls[i].Ordinal = i
	}
	*r = RunResult(a)
	return nil
}
