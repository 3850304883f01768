package dto

import "time"

type CreateMomentRequest struct {
	Title        string    `json:"title" binding:"required"`
	Date         time.Time `json:"date" binding:"required"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Notes        string    `json:"notes"`
	ReminderDays int       `json:"reminder_days"`
}

type UpdateMomentRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Category    *string    `json:"category"`
}

type ShareMomentRequest struct {
	Emails []string `json:"emails" binding:"required"`
}

type RespondInvitationRequest struct {
	Decision string `json:"decision" binding:"required"`
}

type UpdateReflectionRequest struct {
	Text     *string `json:"text"`
	PhotoURL *string `json:"photo_url"`
}

type CreateTaskRequest struct {
	Text            string     `json:"text" binding:"required"`
	Owner           string     `json:"owner"`
	CompletionDate  *time.Time `json:"completion_date"`
	ReminderEnabled *bool      `json:"reminder_enabled"`
}

type UpdateTaskRequest struct {
	Text            *string    `json:"text"`
	Owner           *string    `json:"owner"`
	CompletionDate  *time.Time `json:"completion_date"`
	Done            *bool      `json:"done"`
	ReminderEnabled *bool      `json:"reminder_enabled"`
}

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
}
