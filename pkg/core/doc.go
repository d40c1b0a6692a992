// Package core holds the data model shared by the orchestration packages:
// agent roles, plan items, tool call records and the terminal RunResult.
// Everything here is a plain value; entities are created fresh per run and
// discarded once the RunResult is returned.
package core
