package domain

// Candidate is static reference data: a name running for a position.
// Candidates are read-only to the voting subsystem and used for display;
// ballot selections are not checked against this list.
type Candidate struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// CandidatesByPosition groups candidate names under their position, the
// shape the candidate listing endpoint returns.
type CandidatesByPosition map[Position][]string
