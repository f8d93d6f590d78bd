package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/service"
)

// ProfileHandler serves public user profiles.
type ProfileHandler struct {
	users     *service.AuthService
	questions *service.QuestionService
	answers   *service.AnswerService
}

func NewProfileHandler(users *service.AuthService, questions *service.QuestionService, answers *service.AnswerService) *ProfileHandler {
	return &ProfileHandler{
		users:     users,
		questions: questions,
		answers:   answers,
	}
}

type profileResponse struct {
	User      *model.User      `json:"user"`
	Questions []model.Question `json:"questions"`
	Answers   []model.Answer   `json:"answers"`
}

// View handles GET /profile/{username}: the user plus their recent
// approved questions and answers.
func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}

	questions, err := h.questions.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	answers, err := h.answers.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		User:      user,
		Questions: questions,
		Answers:   answers,
	})
}
