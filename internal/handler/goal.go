package handler

import (
	"net/http"

	"github.com/templui/goalcoach/internal/ctxkeys"
	"github.com/templui/goalcoach/internal/repository"
	"github.com/templui/goalcoach/internal/service"
)

type GoalHandler struct {
	goalService    *service.GoalService
	profileService *service.ProfileService
	messageService *service.MessageService
	exportService  *service.ExportService
}

func NewGoalHandler(
	goalService *service.GoalService,
	profileService *service.ProfileService,
	messageService *service.MessageService,
	exportService *service.ExportService,
) *GoalHandler {
	return &GoalHandler{
		goalService:    goalService,
		profileService: profileService,
		messageService: messageService,
		exportService:  exportService,
	}
}

type goalCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Timezone    string `json:"timezone"`
}

type dayUpdateRequest struct {
	Intent *string `json:"intent"`
	Action *string `json:"action"`
}

type exportResponse struct {
	*service.GoalExport
	ArchiveURL string `json:"archiveUrl,omitempty"`
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = repository.GoalSortRecent
	}

	goals, err := h.goalService.Goals(r.Context(), user.ID, sortBy)
	if err != nil {
		writeError(w, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req goalCreateRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	zone, err := h.profileService.Zone(r.Context(), user.ID, req.Timezone)
	if err != nil {
		writeError(w, err, "user_id", user.ID)
		return
	}

	goal, err := h.goalService.Create(r.Context(), user.ID, req.Title, req.Description, zone)
	if err != nil {
		writeError(w, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.goalService.ByID(r.Context(), user.ID, goalID)
	if err != nil {
		writeError(w, err, "user_id", user.ID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	err := h.goalService.Delete(r.Context(), user.ID, goalID)
	if err != nil {
		writeError(w, err, "user_id", user.ID, "goal_id", goalID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) Days(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	zone, err := h.profileService.Zone(r.Context(), user.ID, r.URL.Query().Get("timezone"))
	if err != nil {
		writeError(w, err, "user_id", user.ID)
		return
	}

	days, err := h.goalService.Days(r.Context(), user.ID, goalID, zone)
	if err != nil {
		writeError(w, err, "user_id", user.ID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, days)
}

func (h *GoalHandler) UpdateDay(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")
	date := r.PathValue("date")

	var req dayUpdateRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	day, err := h.goalService.UpdateDay(r.Context(), user.ID, goalID, date, service.DayUpdate{
		Intent: req.Intent,
		Action: req.Action,
	})
	if err != nil {
		writeError(w, err, "user_id", user.ID, "goal_id", goalID, "date", date)
		return
	}

	writeJSON(w, http.StatusOK, day)
}

func (h *GoalHandler) Messages(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	messages, err := h.messageService.History(r.Context(), user.ID, goalID)
	if err != nil {
		writeError(w, err, "user_id", user.ID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// Export returns the goal with all of its days and messages. With storage
// configured the export is also archived and a download link is included.
func (h *GoalHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	export, err := h.exportService.Export(r.Context(), user.ID, goalID)
	if err != nil {
		writeError(w, err, "user_id", user.ID, "goal_id", goalID)
		return
	}

	resp := exportResponse{GoalExport: export}
	if h.exportService.StorageEnabled() {
		resp.ArchiveURL, err = h.exportService.Archive(r.Context(), export)
		if err != nil {
			writeError(w, err, "user_id", user.ID, "goal_id", goalID)
			return
		}
	}

	w.Header().Set("Content-Disposition", "attachment; filename=goal-export.json")
	writeJSON(w, http.StatusOK, resp)
}
