package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/auth"
	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/service"
)

// QuestionHandler serves the front page and the question CRUD endpoints.
type QuestionHandler struct {
	questions *service.QuestionService
	answers   *service.AnswerService
	users     *service.AuthService
}

func NewQuestionHandler(questions *service.QuestionService, answers *service.AnswerService, users *service.AuthService) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		answers:   answers,
		users:     users,
	}
}

type questionRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"category_id"`
	Tags       string `json:"tags"` // comma-separated names
}

// questionSummary is a question enriched with the pieces list views need.
type questionSummary struct {
	model.Question
	Author      string   `json:"author"`
	Score       int      `json:"score"`
	AnswerCount int      `json:"answer_count"`
	Tags        []string `json:"tags"`
}

type answerDetail struct {
	model.Answer
	Author string `json:"author"`
	Score  int    `json:"score"`
}

type questionDetail struct {
	questionSummary
	Answers []answerDetail `json:"answers"`
}

type indexResponse struct {
	Questions  []questionSummary `json:"questions"`
	Categories []model.Category  `json:"categories"`
}

// Index handles GET /. Supports ?search= and ?category= filters.
func (h *QuestionHandler) Index(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questions.List(r.Context(), r.URL.Query().Get("search"), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}

	summaries := make([]questionSummary, 0, len(questions))
	for i := range questions {
		summary, err := h.summarize(r, &questions[i])
		if err != nil {
			writeError(w, err)
			return
		}
		summaries = append(summaries, *summary)
	}

	categories, err := h.questions.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, indexResponse{Questions: summaries, Categories: categories})
}

// Ask handles POST /ask.
func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	question, err := h.questions.Ask(r.Context(), userID, req.Title, req.Content, req.CategoryID, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, question)
}

// View handles GET /question/{id}: the question with its score, tags,
// author, and approved answers. Each request bumps the view counter.
func (h *QuestionHandler) View(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	question, err := h.questions.View(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.summarize(r, question)
	if err != nil {
		writeError(w, err)
		return
	}

	answers, err := h.answers.ListForQuestion(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	details := make([]answerDetail, 0, len(answers))
	for i := range answers {
		score, err := h.answers.Score(r.Context(), answers[i].ID)
		if err != nil {
			writeError(w, err)
			return
		}
		details = append(details, answerDetail{
			Answer: answers[i],
			Author: h.username(r, answers[i].UserID),
			Score:  score,
		})
	}

	writeJSON(w, http.StatusOK, questionDetail{
		questionSummary: *summary,
		Answers:         details,
	})
}

// Edit handles POST /question/edit/{id}.
func (h *QuestionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	question, err := h.questions.Edit(r.Context(), userID, chi.URLParam(r, "id"),
		req.Title, req.Content, req.CategoryID, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

// Delete handles POST /question/delete/{id}.
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	if err := h.questions.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *QuestionHandler) summarize(r *http.Request, question *model.Question) (*questionSummary, error) {
	score, err := h.questions.Score(r.Context(), question.ID)
	if err != nil {
		return nil, err
	}

	tags, err := h.questions.Tags(r.Context(), question.ID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.TagName)
	}

	answers, err := h.answers.ListForQuestion(r.Context(), question.ID)
	if err != nil {
		return nil, err
	}

	return &questionSummary{
		Question:    *question,
		Author:      h.username(r, question.UserID),
		Score:       score,
		AnswerCount: len(answers),
		Tags:        names,
	}, nil
}

// username resolves a user ID for display. A missing author is rendered
// as "unknown" rather than failing the whole page.
func (h *QuestionHandler) username(r *http.Request, userID string) string {
	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		return "unknown"
	}
	return user.Username
}
