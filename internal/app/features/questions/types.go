package questions

import "github.com/dalemusser/campaignhub/internal/domain/models"

type createRequest struct {
	QuestionText string         `json:"questionText" validate:"required,min=3,max=500" label:"Question text"`
	Type         string         `json:"type" validate:"required,qtype" label:"Type"`
	Options      map[string]any `json:"options"`
	Required     bool           `json:"required"`
	Order        *int           `json:"order" validate:"omitempty,min=0" label:"Order"`
}

type updateRequest struct {
	QuestionText *string        `json:"questionText" validate:"omitempty,min=3,max=500" label:"Question text"`
	Type         *string        `json:"type" validate:"omitempty,qtype" label:"Type"`
	Options      map[string]any `json:"options"`
	Required     *bool          `json:"required"`
	Order        *int           `json:"order" validate:"omitempty,min=0" label:"Order"`
}

type reorderRequest struct {
	Orders []models.QuestionOrder `json:"orders" validate:"required,min=1" label:"Orders"`
}
