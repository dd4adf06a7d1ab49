package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/americare/flourish/internal/survey"
	"github.com/americare/flourish/pkg/models"
	"github.com/americare/flourish/pkg/repository"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

// AdminHandler serves the role-gated management endpoints: entity
// lifecycle, hierarchy edits, review, import, backup-and-clear and user
// administration.
type AdminHandler struct {
	svc      *survey.Service
	userRepo repository.UserRepo
}

func NewAdminHandler(svc *survey.Service, ur repository.UserRepo) *AdminHandler {
	return &AdminHandler{svc: svc, userRepo: ur}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (h *AdminHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.svc.Entities(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entities == nil {
		entities = []models.SurveyEntity{}
	}
	writeJSON(w, map[string]any{"entities": entities}, http.StatusOK)
}

// RotateEntities archives the active entity and creates the next year's
// entity with a cloned hierarchy.
func (h *AdminHandler) RotateEntities(w http.ResponseWriter, r *http.Request) {
	next, err := h.svc.RotateToNext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, next, http.StatusCreated)
}

func (h *AdminHandler) ActivateEntity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}
	if err := h.svc.SetActive(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "activated"}, http.StatusOK)
}

type sectionRequest struct {
	Name            string `json:"name"`
	ParentSectionID *int64 `json:"parent_section_id,omitempty"`
}

func (h *AdminHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	sec, err := h.svc.AddSection(r.Context(), req.Name, req.ParentSectionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, sec, http.StatusCreated)
}

func (h *AdminHandler) RenameSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid section id", http.StatusBadRequest)
		return
	}

	var req sectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.RenameSection(r.Context(), id, req.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "renamed"}, http.StatusOK)
}

func (h *AdminHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid section id", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteSection(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type questionRequest struct {
	SectionID int64  `json:"section_id"`
	Text      string `json:"text"`
}

func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.SectionID <= 0 || strings.TrimSpace(req.Text) == "" {
		http.Error(w, "section_id and text are required", http.StatusBadRequest)
		return
	}

	q, err := h.svc.AddQuestion(r.Context(), req.SectionID, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, q, http.StatusCreated)
}

func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid question id", http.StatusBadRequest)
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateQuestion(r.Context(), id, req.Text); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "updated"}, http.StatusOK)
}

func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid question id", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteQuestion(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Review returns the active hierarchy with everyone's answers attached.
func (h *AdminHandler) Review(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.SectionTree(r.Context(), true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"sections": tree}, http.StatusOK)
}

// Import bulk-creates sections and questions from a JSON document. A
// document the schema rejects is a 400, not a 409.
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	res, err := h.svc.ImportHierarchy(r.Context(), raw)
	if err != nil {
		if errors.Is(err, survey.ErrInvalidState) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, res, http.StatusCreated)
}

func (h *AdminHandler) ClearResponses(w http.ResponseWriter, r *http.Request) {
	backupPath, err := h.svc.ClearResponsesWithBackup(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "cleared", "backup": backupPath}, http.StatusOK)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, map[string]any{"users": users}, http.StatusOK)
}

type createUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser provisions an account with an explicit role, unlike the
// open signup which always grants employee.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}
	switch req.Role {
	case "":
		req.Role = models.RoleEmployee
	case models.RoleEmployee, models.RoleManager, models.RoleAdmin:
	default:
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         req.Role,
		PasswordHash: string(hash),
	}
	id, err := h.userRepo.CreateUser(r.Context(), &user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		writeServiceError(w, err)
		return
	}
	user.ID = id
	writeJSON(w, user, http.StatusCreated)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	switch req.Role {
	case models.RoleEmployee, models.RoleManager, models.RoleAdmin:
	default:
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	if err := h.userRepo.UpdateUserRole(r.Context(), id, req.Role); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "updated"}, http.StatusOK)
}
