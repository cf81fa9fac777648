package domain

import (
	"fmt"
	"strings"
)

// VoteErrorCode enumerates every way a ballot submission can fail. The set
// is closed: handlers map each code to exactly one transport status and
// message, and "server error" is reserved for PersistenceFailure.
type VoteErrorCode string

const (
	CodeVotingClosed       VoteErrorCode = "voting_closed"
	CodeVoterNotFound      VoteErrorCode = "voter_not_found"
	CodeAlreadyVoted       VoteErrorCode = "already_voted"
	CodeIncompleteBallot   VoteErrorCode = "incomplete_ballot"
	CodePersistenceFailure VoteErrorCode = "persistence_failure"
	CodeTimeout            VoteErrorCode = "timeout"
)

// VoteError is a submission failure with a stable code. Two VoteErrors
// match under errors.Is when their codes match, so callers can test
// against the sentinel values below regardless of wrapped detail.
type VoteError struct {
	Code VoteErrorCode
	// MissingPositions is set for CodeIncompleteBallot only.
	MissingPositions []Position
	cause            error
}

func (e *VoteError) Error() string {
	switch e.Code {
	case CodeVotingClosed:
		return "voting has ended"
	case CodeVoterNotFound:
		return "voter not found"
	case CodeAlreadyVoted:
		return "already voted"
	case CodeIncompleteBallot:
		if len(e.MissingPositions) == 0 {
			return "ballot contains selections for unknown positions"
		}
		names := make([]string, len(e.MissingPositions))
		for i, p := range e.MissingPositions {
			names[i] = string(p)
		}
		return fmt.Sprintf("missing required fields: %s", strings.Join(names, ", "))
	case CodeTimeout:
		return "vote submission timed out"
	default:
		if e.cause != nil {
			return fmt.Sprintf("vote persistence failed: %v", e.cause)
		}
		return "vote persistence failed"
	}
}

func (e *VoteError) Unwrap() error { return e.cause }

// Is matches on the error code so sentinel comparisons work for
// instances that carry extra detail.
func (e *VoteError) Is(target error) bool {
	t, ok := target.(*VoteError)
	return ok && t.Code == e.Code
}

// Sentinel submission errors.
var (
	ErrVotingClosed  = &VoteError{Code: CodeVotingClosed}
	ErrVoterNotFound = &VoteError{Code: CodeVoterNotFound}
	ErrAlreadyVoted  = &VoteError{Code: CodeAlreadyVoted}
	ErrTimeout       = &VoteError{Code: CodeTimeout}
)

// NewIncompleteBallotError builds an IncompleteBallot error naming the
// positions the ballot left unselected.
func NewIncompleteBallotError(missing []Position) *VoteError {
	return &VoteError{Code: CodeIncompleteBallot, MissingPositions: missing}
}

// NewPersistenceError wraps a storage failure that aborted a submission.
func NewPersistenceError(cause error) *VoteError {
	return &VoteError{Code: CodePersistenceFailure, cause: cause}
}
