package core

// PlanItem is a single tool invocation proposed by the planner. It is
// transient: produced during planning, consumed by the executor, never
// persisted.
type PlanItem struct {
	Tool  string `json:"tool"`
	Query string `json:"query"`
}
