package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"nextrole/internal/application"
	"nextrole/internal/auth"
	"nextrole/internal/httpapi"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type ApplicationHandler struct {
	Svc *application.Service
	Log logrus.FieldLogger
	// Conflicts counts duplicate creates. Optional.
	Conflicts prometheus.Counter

	validate *validator.Validate
}

func NewApplicationHandler(svc *application.Service, log logrus.FieldLogger, conflicts prometheus.Counter) *ApplicationHandler {
	return &ApplicationHandler{
		Svc:       svc,
		Log:       log,
		Conflicts: conflicts,
		validate:  newValidator(),
	}
}

type createApplicationReq struct {
	Company string `json:"company" validate:"required,max=255"`
	Role    string `json:"role" validate:"required,max=255"`
	Status  string `json:"status" validate:"omitempty,max=32"`
}

type updateStatusReq struct {
	Status string `json:"status" validate:"required,max=32"`
}

type conflictResp struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Job     application.Application `json:"job"`
}

type messageResp struct {
	Message string                   `json:"message"`
	Job     *application.Application `json:"job,omitempty"`
	Deleted *int64                   `json:"deleted,omitempty"`
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.IdentityFromContext(r.Context())

	c, err := application.NewCriteria(r.URL.Query().Get("search"), r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rows, err := h.Svc.List(r.Context(), uid, c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []application.Application{}
	}
	httpapi.WriteJSON(w, http.StatusOK, rows)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.IdentityFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	a, err := h.Svc.Get(r.Context(), uid, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, a)
}

func (h *ApplicationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.IdentityFromContext(r.Context())

	s, err := h.Svc.Stats(r.Context(), uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, s)
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.IdentityFromContext(r.Context())

	var req createApplicationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeBadRequest, "bad json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	a, err := h.Svc.Create(r.Context(), uid, application.CreateInput{
		Company: req.Company,
		Role:    req.Role,
		Status:  req.Status,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, a)
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.IdentityFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeBadRequest, "bad json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	a, err := h.Svc.UpdateStatus(r.Context(), uid, id, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, messageResp{Message: "Updated", Job: &a})
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.IdentityFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), uid, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, messageResp{Message: "Deleted"})
}

func (h *ApplicationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.IdentityFromContext(r.Context())

	n, err := h.Svc.DeleteAll(r.Context(), uid, r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, messageResp{Message: "Cleared", Deleted: &n})
}

func (h *ApplicationHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ce *application.ConflictError
	switch {
	case errors.As(err, &ce):
		if h.Conflicts != nil {
			h.Conflicts.Inc()
		}
		httpapi.WriteJSON(w, http.StatusConflict, conflictResp{
			Code:    httpapi.CodeConflict,
			Message: "Duplicate",
			Job:     ce.Existing,
		})
	case errors.Is(err, application.ErrValidation):
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeValidation, err.Error())
	case errors.Is(err, application.ErrNotFound):
		httpapi.WriteError(w, http.StatusNotFound, httpapi.CodeNotFound, "not found")
	default:
		uid, _ := auth.IdentityFromContext(r.Context())
		h.Log.WithError(err).WithFields(logrus.Fields{
			"user_id": uid,
			"method":  r.Method,
			"path":    r.URL.Path,
		}).Error("store error")
		httpapi.WriteError(w, http.StatusInternalServerError, httpapi.CodeStoreError, "server error")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// newValidator reports fields by their json name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeValidationError reports the first failed field in the message and,
// as field and rule, in meta.
func writeValidationError(w http.ResponseWriter, err error) {
	var meta map[string]string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		meta = map[string]string{"field": verrs[0].Field(), "rule": verrs[0].Tag()}
	}
	httpapi.WriteErrorMeta(w, http.StatusBadRequest, httpapi.CodeValidation, validationMessage(err), meta)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid input"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " required"
	case "max":
		return fe.Field() + " too long"
	case "min":
		return fe.Field() + " too short"
	case "email":
		return fe.Field() + " must be an email"
	}
	return "invalid " + fe.Field()
}
