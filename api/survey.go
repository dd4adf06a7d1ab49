package api

import (
	"encoding/json"
	"net/http"

	"github.com/americare/flourish/internal/survey"
)

// SurveyHandler serves the employee-facing endpoints: the active
// entity's hierarchy, the caller's own answers and completion.
type SurveyHandler struct {
	svc *survey.Service
}

func NewSurveyHandler(svc *survey.Service) *SurveyHandler {
	return &SurveyHandler{svc: svc}
}

type surveyResponse struct {
	Year     int                   `json:"year"`
	Sections []*survey.SectionNode `json:"sections"`
}

type putResponsesRequest struct {
	Answers map[int64]string `json:"answers"`
}

func (h *SurveyHandler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	active, err := h.svc.ActiveEntity(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	tree, err := h.svc.SectionTree(ctx, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, surveyResponse{Year: active.Year, Sections: tree}, http.StatusOK)
}

func (h *SurveyHandler) PutResponses(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req putResponsesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Answers) == 0 {
		http.Error(w, "answers are required", http.StatusBadRequest)
		return
	}

	if err := h.svc.SaveUserResponses(r.Context(), userID, req.Answers); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "saved"}, http.StatusOK)
}

func (h *SurveyHandler) GetResponses(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	answers, err := h.svc.UserResponses(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, map[string]any{"answers": answers}, http.StatusOK)
}

// Complete marks the caller's survey done. An incomplete or
// zero-question survey yields 409.
func (h *SurveyHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.svc.CompleteSurvey(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "completed"}, http.StatusOK)
}

func (h *SurveyHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	done, err := h.svc.IsCompleted(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, map[string]bool{"completed": done}, http.StatusOK)
}
