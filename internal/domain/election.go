package domain

// ElectionSettings is the single process-wide gate record. It is created
// once (create-if-absent) before voting starts and IsVotingClosed flips
// to true exactly once via the close operation; it never flips back.
type ElectionSettings struct {
	IsVotingClosed bool `json:"isVotingClosed"`
}

// AuthClaims are the verified claims carried by a voter's token.
type AuthClaims struct {
	VoterID string
}
