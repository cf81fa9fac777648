package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"evote/internal/domain"
	"evote/internal/middleware"
	"evote/internal/repository"
	"evote/internal/service"
	apperrors "evote/pkg/errors"
	"evote/pkg/logger"
	"evote/pkg/redis"
)

// VotingHandler serves ballot submission, candidate listing, results and
// the admin close operation.
type VotingHandler struct {
	votingService   service.VotingService
	tallyService    service.TallyService
	electionService service.ElectionService
	candidateRepo   repository.CandidateRepository
	redis           *redis.Client
	logger          *logger.Logger
}

// NewVotingHandler creates a new voting handler
func NewVotingHandler(
	votingService service.VotingService,
	tallyService service.TallyService,
	electionService service.ElectionService,
	candidateRepo repository.CandidateRepository,
	redisClient *redis.Client,
	logger *logger.Logger,
) *VotingHandler {
	return &VotingHandler{
		votingService:   votingService,
		tallyService:    tallyService,
		electionService: electionService,
		candidateRepo:   candidateRepo,
		redis:           redisClient,
		logger:          logger,
	}
}

// SubmitVote handles POST /api/votes/submitVote
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	claims := middleware.VoterFromContext(r.Context())
	if claims == nil {
		respondError(w, r, apperrors.NewAuthenticationError("Please authenticate"))
		return
	}

	var selections domain.Selections
	if err := json.NewDecoder(r.Body).Decode(&selections); err != nil {
		respondError(w, r, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	receipt, err := h.votingService.SubmitBallot(r.Context(), claims.VoterID, selections)
	if err != nil {
		respondError(w, r, mapVoteError(err))
		return
	}

	respondJSON(w, http.StatusOK, receipt)
}

// GetCandidates handles GET /api/votes/candidates
func (h *VotingHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.redis != nil {
		cached, err := h.redis.Get(ctx, h.redis.KeyBuilder.KeyCandidatesAll())
		if err == nil && cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(cached))
			return
		}
		if err != nil && !redis.IsNil(err) {
			h.logger.WithError(err).Warn("Candidate cache read failed")
		}
	}

	grouped, err := h.candidateRepo.GetAllGrouped(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load candidates")
		respondError(w, r, apperrors.NewInternalError("Failed to load candidates", err))
		return
	}

	if h.redis != nil {
		if data, err := json.Marshal(grouped); err == nil {
			if err := h.redis.Set(ctx, h.redis.KeyBuilder.KeyCandidatesAll(), string(data), redis.TTLCandidates); err != nil {
				h.logger.WithError(err).Warn("Failed to cache candidates")
			}
		}
	}

	respondJSON(w, http.StatusOK, grouped)
}

// GetVoteResults handles GET /api/votes/voteResults. The route sits behind
// the results gate, so voting is already closed here.
func (h *VotingHandler) GetVoteResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if match := r.Header.Get("If-None-Match"); match != "" && h.redis != nil {
		n, err := h.redis.Exists(ctx, h.redis.KeyBuilder.KeyResultsETag(trimETag(match)))
		if err == nil && n > 0 {
			w.Header().Set("ETag", match)
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	tally, err := h.tallyService.ComputeTally(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute results")
		respondError(w, r, apperrors.NewInternalError("Failed to compute results", err))
		return
	}

	payload, err := json.Marshal(map[string]interface{}{"results": tally})
	if err != nil {
		respondError(w, r, apperrors.NewInternalError("Failed to encode results", err))
		return
	}

	sum := sha256.Sum256(payload)
	etag := hex.EncodeToString(sum[:8])
	if h.redis != nil {
		if err := h.redis.Set(ctx, h.redis.KeyBuilder.KeyResultsETag(etag), "1", redis.TTLTally); err != nil {
			h.logger.WithError(err).Warn("Failed to cache results etag")
		}
	}

	if trimETag(r.Header.Get("If-None-Match")) == etag {
		w.Header().Set("ETag", `"`+etag+`"`)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", `"`+etag+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// CloseVoting handles POST /api/votes/admin/closeVoting
func (h *VotingHandler) CloseVoting(w http.ResponseWriter, r *http.Request) {
	if err := h.electionService.CloseVoting(r.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to close voting")
		respondError(w, r, apperrors.NewInternalError("Failed to close voting", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Voting has been closed successfully",
	})
}

// mapVoteError translates submission failures into transport errors. The
// mapping is total over the closed code set; anything else is internal.
func mapVoteError(err error) *apperrors.AppError {
	var voteErr *domain.VoteError
	if !errors.As(err, &voteErr) {
		return apperrors.NewInternalError("Failed to submit vote", err)
	}

	switch voteErr.Code {
	case domain.CodeVotingClosed:
		return apperrors.NewAuthorizationError("Voting has ended")
	case domain.CodeAlreadyVoted:
		return apperrors.NewAuthorizationError("You have already voted")
	case domain.CodeVoterNotFound:
		return apperrors.NewNotFoundError("Voter not found")
	case domain.CodeIncompleteBallot:
		missing := make([]string, len(voteErr.MissingPositions))
		for i, p := range voteErr.MissingPositions {
			missing[i] = string(p)
		}
		return apperrors.NewValidationError(voteErr.Error(), map[string]interface{}{
			"missingPositions": missing,
		})
	case domain.CodeTimeout:
		return apperrors.NewTimeoutError("Vote submission timed out")
	default:
		return apperrors.NewInternalError("Failed to submit vote", voteErr)
	}
}

func trimETag(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}
