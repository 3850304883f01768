package delivery

import (
	"context"
	"net/http"
	"sort"
	"time"

	"moments-backend/internal/moment/domain"
	momentdto "moments-backend/internal/moment/dto"
	"moments-backend/internal/moment/repository"
	"moments-backend/internal/moment/store"
	"moments-backend/internal/realtime"
	"moments-backend/pkg/countdown"

	"github.com/gin-gonic/gin"
)

// MomentHandler exposes the moment, task, comment and notification endpoints
type MomentHandler struct {
	manager          *store.Manager
	notificationRepo repository.NotificationRepository
	realtimeService  *realtime.Service
}

// NewMomentHandler creates a new MomentHandler
func NewMomentHandler(manager *store.Manager, notificationRepo repository.NotificationRepository, realtimeService *realtime.Service) *MomentHandler {
	return &MomentHandler{
		manager:          manager,
		notificationRepo: notificationRepo,
		realtimeService:  realtimeService,
	}
}

func (h *MomentHandler) viewer(c *gin.Context) (*store.Store, string, string) {
	userID := c.GetString("userID")
	userEmail := c.GetString("userEmail")
	return h.manager.For(userID), userID, userEmail
}

// ListMoments refreshes from the database and returns the viewer's moments
func (h *MomentHandler) ListMoments(c *gin.Context) {
	st, userID, userEmail := h.viewer(c)
	st.FetchMoments(userID, userEmail)
	c.JSON(http.StatusOK, gin.H{"moments": st.Events()})
}

func (h *MomentHandler) CreateMoment(c *gin.Context) {
	var req momentdto.CreateMomentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, userID, _ := h.viewer(c)
	created, err := st.AddMoment(domain.Moment{
		Title:        req.Title,
		Date:         req.Date,
		Description:  req.Description,
		Category:     domain.ParseCategory(req.Category),
		Notes:        req.Notes,
		ReminderDays: req.ReminderDays,
		UserID:       userID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *MomentHandler) UpdateMoment(c *gin.Context) {
	var req momentdto.UpdateMomentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := domain.MomentPatch{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
	}
	if req.Category != nil {
		category := domain.ParseCategory(*req.Category)
		patch.Category = &category
	}

	st, _, _ := h.viewer(c)
	if err := st.UpdateMoment(c.Param("id"), patch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "moment updated"})
}

func (h *MomentHandler) DeleteMoment(c *gin.Context) {
	st, _, _ := h.viewer(c)
	if err := st.RemoveMoment(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "moment deleted"})
}

// ShareMoment invites collaborators and reports partial delivery failures
func (h *MomentHandler) ShareMoment(c *gin.Context) {
	var req momentdto.ShareMomentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, _, userEmail := h.viewer(c)
	result := st.ShareMoment(c.Param("id"), userEmail, req.Emails)

	if h.realtimeService != nil && result.Count > 0 {
		for _, email := range req.Emails {
			h.realtimeService.Publish(context.Background(), realtime.MomentUpdate{
				Email:    domain.NormalizeEmail(email),
				MomentID: c.Param("id"),
				Action:   "shared",
			})
		}
	}

	c.JSON(http.StatusOK, result)
}

func (h *MomentHandler) RespondToInvitation(c *gin.Context) {
	var req momentdto.RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, userID, userEmail := h.viewer(c)
	err := st.RespondToInvitation(c.Param("id"), userID, userEmail, domain.CollaboratorStatus(req.Decision))
	switch err {
	case nil:
		c.JSON(http.StatusOK, gin.H{"message": "invitation " + req.Decision})
	case store.ErrInvalidDecision:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case store.ErrMomentNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case store.ErrNotInvited:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// UpdateReflection applies instantly; persistence is best effort
func (h *MomentHandler) UpdateReflection(c *gin.Context) {
	var req momentdto.UpdateReflectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, _, _ := h.viewer(c)
	st.UpdateReflection(c.Param("id"), req.Text, req.PhotoURL)
	c.JSON(http.StatusOK, gin.H{"message": "reflection updated"})
}

// SearchMoments fuzzy-matches the query against title, description and notes
func (h *MomentHandler) SearchMoments(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	st, _, _ := h.viewer(c)

	type scored struct {
		moment domain.Moment
		score  float64
	}
	var matches []scored
	for _, m := range st.Events() {
		if !matchMoment(query, m) {
			continue
		}
		matches = append(matches, scored{moment: m, score: scoreMoment(query, m)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	results := make([]domain.Moment, 0, len(matches))
	for _, m := range matches {
		results = append(results, m.moment)
	}
	c.JSON(http.StatusOK, gin.H{"moments": results})
}

// MomentCountdown returns the human countdown label for one moment
func (h *MomentHandler) MomentCountdown(c *gin.Context) {
	st, _, _ := h.viewer(c)

	id := c.Param("id")
	for _, m := range st.Events() {
		if m.ID != id {
			continue
		}
		now := time.Now()
		c.JSON(http.StatusOK, gin.H{
			"label":     countdown.Label(m.Date, now),
			"days":      countdown.DaysUntil(m.Date, now),
			"countdown": countdown.Until(m.Date, now),
		})
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": store.ErrMomentNotFound.Error()})
}

func (h *MomentHandler) CreateTask(c *gin.Context) {
	var req momentdto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminderEnabled := true
	if req.ReminderEnabled != nil {
		reminderEnabled = *req.ReminderEnabled
	}

	st, _, _ := h.viewer(c)
	created, err := st.AddTask(c.Param("id"), req.Text, req.Owner, req.CompletionDate, reminderEnabled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *MomentHandler) UpdateTask(c *gin.Context) {
	var req momentdto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, _, _ := h.viewer(c)
	err := st.UpdateTask(c.Param("id"), c.Param("taskId"), domain.PreparationPatch{
		Text:            req.Text,
		Owner:           req.Owner,
		CompletionDate:  req.CompletionDate,
		Done:            req.Done,
		ReminderEnabled: req.ReminderEnabled,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task updated"})
}

// ToggleTask always acknowledges; failures are reconciled in the background
func (h *MomentHandler) ToggleTask(c *gin.Context) {
	st, _, _ := h.viewer(c)
	st.ToggleTask(c.Param("id"), c.Param("taskId"))
	c.JSON(http.StatusOK, gin.H{"message": "task toggled"})
}

func (h *MomentHandler) DeleteTask(c *gin.Context) {
	st, _, _ := h.viewer(c)
	if err := st.RemoveTask(c.Param("id"), c.Param("taskId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

func (h *MomentHandler) CreateComment(c *gin.Context) {
	var req momentdto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, _, _ := h.viewer(c)
	created, err := st.AddComment(c.Param("id"), req.Content, req.FileURL, req.FileName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *MomentHandler) DeleteComment(c *gin.Context) {
	st, _, _ := h.viewer(c)
	if err := st.RemoveComment(c.Param("id"), c.Param("commentId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

// AllTasks returns every task annotated with its parent event
func (h *MomentHandler) AllTasks(c *gin.Context) {
	st, _, _ := h.viewer(c)
	c.JSON(http.StatusOK, gin.H{"tasks": st.AllTasks()})
}

// ActiveTasks returns open tasks of upcoming events
func (h *MomentHandler) ActiveTasks(c *gin.Context) {
	st, _, _ := h.viewer(c)
	c.JSON(http.StatusOK, gin.H{"tasks": st.ActiveTasks()})
}

// FlatTasks refreshes and returns the denormalized task cache
func (h *MomentHandler) FlatTasks(c *gin.Context) {
	st, userID, _ := h.viewer(c)
	st.FetchTasks(userID)
	c.JSON(http.StatusOK, gin.H{"tasks": st.FlatTasks()})
}

func (h *MomentHandler) ListNotifications(c *gin.Context) {
	st, _, userEmail := h.viewer(c)
	st.FetchNotifications(userEmail)
	c.JSON(http.StatusOK, gin.H{"notifications": st.Notifications()})
}

func (h *MomentHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.notificationRepo.MarkRead(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification read"})
}

// Reset clears the viewer's local state, typically on sign-out
func (h *MomentHandler) Reset(c *gin.Context) {
	st, _, _ := h.viewer(c)
	st.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "store reset"})
}
