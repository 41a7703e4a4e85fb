package domain

import "time"

// HistoryEntry records one pipeline run. It is owned by the history store and
// never mutated after it has been recorded.
type HistoryEntry struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Utterance   string            `json:"utterance"`
	SubCommands []SubCommand      `json:"sub_commands"`
	Results     []ExecutionResult `json:"results"`
}

// Clone deep-copies the entry so callers cannot alias the stored slices.
func (e HistoryEntry) Clone() HistoryEntry {
	out := e
	out.SubCommands = append([]SubCommand(nil), e.SubCommands...)
	out.Results = make([]ExecutionResult, len(e.Results))
	for i, res := range e.Results {
		if res.Action != nil {
			action := res.Action.Clone()
			res.Action = &action
		}
		out.Results[i] = res
	}
	return out
}

// Succeeded reports whether every result of the entry succeeded.
func (e HistoryEntry) Succeeded() bool {
	for _, res := range e.Results {
		if !res.Outcome.OK() {
			return false
		}
	}
	return len(e.Results) > 0
}
