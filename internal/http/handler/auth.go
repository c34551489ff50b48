package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"nextrole/internal/auth"
	"nextrole/internal/httpapi"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// AuthHandler issues bearer tokens for local accounts.
type AuthHandler struct {
	Users auth.Users
	JWT   *auth.JWT
	Log   logrus.FieldLogger

	validate *validator.Validate
}

func NewAuthHandler(users auth.Users, jwtSvc *auth.JWT, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Users: users, JWT: jwtSvc, Log: log, validate: newValidator()}
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeBadRequest, "bad json")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.serverError(w, err)
		return
	}

	u := auth.User{Email: req.Email, PasswordHash: hash}
	if err := h.Users.Create(r.Context(), &u); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			httpapi.WriteError(w, http.StatusConflict, httpapi.CodeConflict, "email already used")
			return
		}
		h.serverError(w, err)
		return
	}

	h.writeToken(w, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeBadRequest, "bad json")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) {
			h.Log.WithError(err).Error("user lookup failed")
		}
		httpapi.WriteError(w, http.StatusUnauthorized, httpapi.CodeUnauthorized, "invalid credentials")
		return
	}
	if !auth.ComparePassword(u.PasswordHash, req.Password) {
		httpapi.WriteError(w, http.StatusUnauthorized, httpapi.CodeUnauthorized, "invalid credentials")
		return
	}

	h.writeToken(w, u)
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, u auth.User) {
	token, err := h.JWT.Sign(u.Identity())
	if err != nil {
		h.serverError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"user_id": u.Identity(),
	})
}

func (h *AuthHandler) serverError(w http.ResponseWriter, err error) {
	h.Log.WithError(err).Error("auth handler failed")
	httpapi.WriteError(w, http.StatusInternalServerError, httpapi.CodeStoreError, "server error")
}
