package domain

import (
	"errors"
	"time"
)

// OutcomeStatus enumerates how a dispatched sub-command ended.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailure OutcomeStatus = "failure"
	// StatusClarification means nothing was executed and the user should rephrase.
	StatusClarification OutcomeStatus = "clarification"
)

// ClarificationPrompt is shown when an action is rejected before execution.
const ClarificationPrompt = "I'm not sure what you want me to do. Could you please rephrase that?"

// Outcome is success(Output) or failure/clarification(Kind, Message).
type Outcome struct {
	Status  OutcomeStatus `json:"status"`
	Output  string        `json:"output,omitempty"`
	Kind    ErrorKind     `json:"kind,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Success builds a successful outcome.
func Success(output string) Outcome {
	return Outcome{Status: StatusSuccess, Output: output}
}

// Failure builds a failed outcome from an error, keeping its kind.
func Failure(err error) Outcome {
	var typed *Error
	msg := ""
	if err != nil {
		msg = err.Error()
		if errors.As(err, &typed) && typed.Err != nil {
			msg = typed.Err.Error()
		}
	}
	return Outcome{Status: StatusFailure, Kind: KindOf(err), Message: msg}
}

// Clarification builds an outcome asking the user to rephrase.
func Clarification(kind ErrorKind, reason string) Outcome {
	return Outcome{Status: StatusClarification, Kind: kind, Message: reason}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// ExecutionResult is the outcome of one dispatched sub-command. SubCommandIndex
// correlates it with the input batch regardless of completion order.
type ExecutionResult struct {
	SubCommandIndex int               `json:"sub_command_index"`
	SubCommand      SubCommand        `json:"sub_command"`
	Outcome         Outcome           `json:"outcome"`
	Action          *StructuredAction `json:"action,omitempty"`
	Duration        time.Duration     `json:"duration"`
}

// Response aggregates one pipeline run for the caller.
type Response struct {
	EntryID     string            `json:"entry_id"`
	Utterance   string            `json:"utterance"`
	SubCommands []SubCommand      `json:"sub_commands"`
	Results     []ExecutionResult `json:"results"`
	Degraded    string            `json:"degraded,omitempty"`
	Exit        bool              `json:"exit"`
}
