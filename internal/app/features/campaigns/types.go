package campaigns

import "time"

type createRequest struct {
	Title              string     `json:"title" validate:"required,min=3,max=200" label:"Title"`
	Description        string     `json:"description" validate:"max=2000" label:"Description"`
	Visibility         string     `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE" label:"Visibility"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt"`
}

// updateRequest fields are optional; nil leaves the stored value.
type updateRequest struct {
	Title                             *string    `json:"title" validate:"omitempty,min=3,max=200" label:"Title"`
	Description                       *string    `json:"description" validate:"omitempty,max=2000" label:"Description"`
	Visibility                        *string    `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE" label:"Visibility"`
	ScheduledPublishAt                *time.Time `json:"scheduledPublishAt"`
	ClearSchedule                     bool       `json:"clearSchedule"`
	AllowManagerViewRespondentDetails *bool      `json:"allowManagerViewRespondentDetails"`
}
