package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"study-quiz-service/internal/app"
	"study-quiz-service/internal/domain"
)

// APIHandler exposes the quiz management REST endpoints.
type APIHandler struct {
	quizzes *app.QuizService
}

func NewAPIHandler(quizzes *app.QuizService) *APIHandler {
	return &APIHandler{quizzes: quizzes}
}

// Register mounts the API routes on the router.
func (h *APIHandler) Register(r chi.Router) {
	r.Get("/api/topics", h.listQuizzes)
	r.Get("/api/topic/{name}", h.getTopics)
	r.Get("/api/quiz/{name}/details", h.getQuizDetails)
	r.Post("/api/save-quiz", h.saveQuiz)
	r.Post("/save-quiz", h.saveQuiz)
	r.Put("/api/update-quiz", h.updateQuiz)
	r.Delete("/api/delete-quiz", h.deleteQuiz)
	r.Get("/api/health", h.health)
}

type saveQuizRequest struct {
	QuizName string          `json:"quizName"`
	JSONData json.RawMessage `json:"jsonData"`
}

type deleteQuizRequest struct {
	QuizName string `json:"quizName"`
}

func (h *APIHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	infos, err := h.quizzes.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *APIHandler) getTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.quizzes.GetTopics(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (h *APIHandler) getQuizDetails(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.GetQuiz(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *APIHandler) saveQuiz(w http.ResponseWriter, r *http.Request) {
	var req saveQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid JSON format"))
		return
	}
	info, err := h.quizzes.SaveQuiz(r.Context(), req.QuizName, req.JSONData)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Quiz saved successfully",
		"quiz":    info,
	})
}

func (h *APIHandler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	var req saveQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid JSON format"))
		return
	}
	if err := h.quizzes.UpdateTopics(r.Context(), req.QuizName, req.JSONData); err != nil {
		if errors.Is(err, domain.ErrQuizProtected) {
			writeJSON(w, http.StatusBadRequest, errorBody("Cannot update predefined topics"))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Quiz updated successfully",
	})
}

func (h *APIHandler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	var req deleteQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid JSON format"))
		return
	}
	if err := h.quizzes.DeleteQuiz(r.Context(), req.QuizName); err != nil {
		if errors.Is(err, domain.ErrQuizProtected) {
			writeJSON(w, http.StatusBadRequest, errorBody("Cannot delete predefined topics"))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Quiz deleted successfully",
	})
}

func (h *APIHandler) health(w http.ResponseWriter, r *http.Request) {
	status := h.quizzes.Health(r.Context())
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, status)
}

func errorBody(message string) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": message}
}

func writeError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorBody(vErr.Message))
	case errors.Is(err, domain.ErrQuizExists):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, domain.ErrQuizProtected):
		writeJSON(w, http.StatusBadRequest, errorBody("Cannot modify predefined topics"))
	case errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("Quiz not found"))
	default:
		log.Printf("http: internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("Internal server error"))
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}
