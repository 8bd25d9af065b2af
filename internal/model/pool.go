package model

// QuestionPool groups questions for selection on the start screen.
// The ID is a slug (e.g. "default", "ignite-2026") chosen at creation time.
type QuestionPool struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	IconPath     string `json:"iconPath,omitempty"`
	IsActive     bool   `json:"isActive"`
	DisplayOrder int    `json:"displayOrder"`
}

// CreatePoolRequest is the payload for creating a question pool.
type CreatePoolRequest struct {
	ID           string `json:"id" binding:"required,min=1,max=64"`
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Description  string `json:"description" binding:"omitempty,max=1000"`
	IconPath     string `json:"iconPath" binding:"omitempty,max=300"`
	IsActive     *bool  `json:"isActive" binding:"omitempty"`
	DisplayOrder int    `json:"displayOrder" binding:"min=0"`
}
