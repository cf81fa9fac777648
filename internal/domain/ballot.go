package domain

import "time"

// Ballot is one voter's committed set of selections. Ballots are immutable
// once written and are the sole source of truth for the tally; the unique
// voter reference is enforced by the store, not merely assumed.
type Ballot struct {
	ID          string     `json:"id"`
	VoterID     string     `json:"voter_id"`
	Selections  Selections `json:"selections"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// BallotReceipt is returned to the voter after a successful commit.
type BallotReceipt struct {
	BallotID    string    `json:"ballot_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Message     string    `json:"message"`
}

// Tally maps every position to candidate-name vote counts. Positions with
// no votes carry an empty map; callers treat a missing candidate key as
// zero. The tally makes no winner determination.
type Tally map[Position]map[string]int

// EmptyTally returns a tally with an empty count map per position.
func EmptyTally() Tally {
	t := make(Tally, len(AllPositions()))
	for _, p := range AllPositions() {
		t[p] = map[string]int{}
	}
	return t
}
