package domain

import "time"

// Voter is a registered elector. HasVoted starts false and flips to true
// exactly once, only through the ballot commit; no other code path may
// set it.
type Voter struct {
	ID              string     `json:"id"`
	AdmissionNumber string     `json:"admission_number"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Course          string     `json:"course"`
	Phone           string     `json:"phone"`
	PasswordHash    string     `json:"-"`
	HasVoted        bool       `json:"has_voted"`
	ResetToken      string     `json:"-"`
	ResetExpires    *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

// RegisterRequest carries a new voter registration.
type RegisterRequest struct {
	Email           string `json:"email"`
	AdmissionNumber string `json:"admissionNumber"`
	Name            string `json:"name"`
	Course          string `json:"course"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// BulkRegisterResult reports the outcome of one entry in a bulk
// registration. Status is "success" or "failed"; Reason is set on failure.
type BulkRegisterResult struct {
	AdmissionNumber string `json:"admissionNumber"`
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	AdmissionNumber string `json:"admissionNumber"`
	Password        string `json:"password"`
}

// LoginResponse carries the issued token and the voter's public profile.
type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	Voter   VoterProfile `json:"voter"`
}

// VoterProfile is the voter as shown to the voter themself.
type VoterProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AdmissionNumber string `json:"admissionNumber"`
	Email           string `json:"email"`
}

// MeResponse reports the voter's profile together with both vote-status
// signals: the registry flag and whether a ballot record exists. The two
// cannot diverge under the atomic commit, but both are reported so a
// discrepancy would be visible.
type MeResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AdmissionNumber string `json:"admissionNumber"`
	Email           string `json:"email"`
	HasVoted        bool   `json:"hasVoted"`
	VoteRecord      bool   `json:"voteRecord"`
}

// ForgotPasswordRequest identifies a voter for a reset link.
type ForgotPasswordRequest struct {
	AdmissionNumber string `json:"admissionNumber"`
	Phone           string `json:"phone"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}
