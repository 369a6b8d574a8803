package runner

import "wisp/internal/provider"

// History is the append-only conversation log. The runner is its only
// writer; the full log is replayed to the provider on every generation.
type History struct {
	turns []provider.Turn
}

// NewHistory creates an empty conversation log.
func NewHistory() *History {
	return &History{}
}

// Turns returns a copy of the log so callers can extend it without
// committing anything.
func (h *History) Turns() []provider.Turn {
	out := make([]provider.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Append records turns at the end of the log.
func (h *History) Append(turns ...provider.Turn) {
	h.turns = append(h.turns, turns...)
}

// AppendToolRoundTrip records a tool exchange as one unit: the model turn
// carrying the function call immediately followed by the user turn carrying
// its response. Appending them together keeps the call/response pairing
// intact no matter what happens between individual appends.
func (h *History) AppendToolRoundTrip(call provider.FunctionCall, response map[string]any) {
	h.turns = append(h.turns,
		provider.NewFunctionCallTurn(call.Name, call.Args),
		provider.NewFunctionResponseTurn(call.Name, response),
	)
}
