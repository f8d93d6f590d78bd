package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/auth"
	"github.com/sakif/stackit/internal/service"
)

// VoteHandler serves POST /vote for both questions and answers.
type VoteHandler struct {
	votes *service.VoteService
}

func NewVoteHandler(votes *service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type voteRequest struct {
	QuestionID string `json:"question_id"`
	AnswerID   string `json:"answer_id"`
	VoteType   string `json:"vote_type"`
}

type voteResponse struct {
	Score int `json:"score"`
}

// Cast toggles a vote and returns the target's new score. Exactly one of
// question_id and answer_id must be set.
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	score, err := h.votes.Cast(r.Context(), userID, req.QuestionID, req.AnswerID, req.VoteType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, voteResponse{Score: score})
}
