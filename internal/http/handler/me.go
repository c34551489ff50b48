package handler

import (
	"net/http"

	"nextrole/internal/auth"
	"nextrole/internal/httpapi"
)

type MeHandler struct{}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.IdentityFromContext(r.Context())
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": uid,
	})
}
