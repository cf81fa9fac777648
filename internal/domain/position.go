package domain

// Position is one of the four elected offices. The set is closed: ballots
// must carry exactly one selection per position and nothing else.
type Position string

const (
	PositionPresident        Position = "president"
	PositionVicePresident    Position = "vicePresident"
	PositionSecretaryGeneral Position = "secretaryGeneral"
	PositionFinanceSecretary Position = "financeSecretary"
)

// AllPositions returns the required positions in their canonical order.
func AllPositions() []Position {
	return []Position{
		PositionPresident,
		PositionVicePresident,
		PositionSecretaryGeneral,
		PositionFinanceSecretary,
	}
}

// ValidPosition reports whether p names one of the four offices.
func ValidPosition(p Position) bool {
	switch p {
	case PositionPresident, PositionVicePresident, PositionSecretaryGeneral, PositionFinanceSecretary:
		return true
	}
	return false
}

// Selections maps each position to the chosen candidate name.
type Selections map[Position]string

// Missing returns the required positions that have no non-empty selection,
// in canonical order.
func (s Selections) Missing() []Position {
	var missing []Position
	for _, p := range AllPositions() {
		if s[p] == "" {
			missing = append(missing, p)
		}
	}
	return missing
}

// Unknown returns the keys of s that are not required positions.
func (s Selections) Unknown() []Position {
	var unknown []Position
	for p := range s {
		if !ValidPosition(p) {
			unknown = append(unknown, p)
		}
	}
	return unknown
}

// Validate checks that s carries exactly one non-empty selection per
// required position and no others. It returns an IncompleteBallot error
// naming the missing positions otherwise.
func (s Selections) Validate() error {
	missing := s.Missing()
	if len(missing) > 0 {
		return NewIncompleteBallotError(missing)
	}
	if len(s.Unknown()) > 0 {
		return NewIncompleteBallotError(nil)
	}
	return nil
}
