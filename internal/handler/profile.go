package handler

import (
	"net/http"

	"github.com/templui/goalcoach/internal/ctxkeys"
	"github.com/templui/goalcoach/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

type profileUpdateRequest struct {
	Name     *string `json:"name"`
	Timezone *string `json:"timezone"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	profile, err := h.profileService.ByUserID(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req profileUpdateRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profileService.Update(r.Context(), user.ID, req.Name, req.Timezone)
	if err != nil {
		writeError(w, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
