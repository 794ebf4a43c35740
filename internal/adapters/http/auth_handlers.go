package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

type registerRequest struct {
	CompanyName string `json:"company_name"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type registerResponse struct {
	Company *domain.Company `json:"company"`
	Admin   *domain.User    `json:"admin"`
}

func (rt *Router) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	company, admin, err := rt.registrar.Register(r.Context(), ports.RegisterCompanyInput{
		CompanyName: req.CompanyName,
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Company: company, Admin: admin})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	token, user, err := rt.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (rt *Router) logout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	rt.sessions.SignOut(claims.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
