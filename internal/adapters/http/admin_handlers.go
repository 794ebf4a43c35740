package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

type areaRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (rt *Router) createArea(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	area, err := rt.areas.CreateArea(r.Context(), claims.CompanyID, claims.UserID, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, area)
}

func (rt *Router) updateArea(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	areaID := r.PathValue("area_id")

	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	area, err := rt.areas.UpdateArea(r.Context(), claims.CompanyID, claims.UserID, areaID, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, area)
}

func (rt *Router) deleteArea(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	areaID := r.PathValue("area_id")

	if err := rt.areas.DeleteArea(r.Context(), claims.CompanyID, claims.UserID, areaID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (rt *Router) listAreas(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	areas, err := rt.areas.ListAreas(r.Context(), claims.CompanyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"areas": areas})
}

func (rt *Router) listAreaUsers(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	areaID := r.PathValue("area_id")

	users, err := rt.users.ListAreaUsers(r.Context(), claims.CompanyID, areaID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

type createUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	AreaID   string `json:"area_id"`
	Position string `json:"position"`
}

func (rt *Router) createUser(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "parse role", err))
		return
	}

	user, err := rt.users.CreateUser(r.Context(), ports.CreateUserInput{
		CompanyID: claims.CompanyID,
		ActorID:   claims.UserID,
		Email:     req.Email,
		FullName:  req.FullName,
		Password:  req.Password,
		Role:      role,
		AreaID:    req.AreaID,
		Position:  req.Position,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (rt *Router) listUsers(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	users, err := rt.users.ListUsers(r.Context(), claims.CompanyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (rt *Router) changeUserRole(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	userID := r.PathValue("user_id")

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "parse role", err))
		return
	}

	if err := rt.users.ChangeRole(r.Context(), claims.CompanyID, claims.UserID, userID, role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (rt *Router) changeUserStatus(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	userID := r.PathValue("user_id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	status, err := domain.ParseUserStatus(req.Status)
	if err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "parse status", err))
		return
	}

	if err := rt.users.ChangeStatus(r.Context(), claims.CompanyID, claims.UserID, userID, status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (rt *Router) assignUserArea(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	userID := r.PathValue("user_id")

	var req struct {
		AreaID string `json:"area_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := rt.users.AssignArea(r.Context(), claims.CompanyID, claims.UserID, userID, req.AreaID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
