package request

type ReportIncident struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Category    string   `json:"category" validate:"max=64"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	Address     *string  `json:"address" validate:"omitempty,max=500"`
	MediaID     *string  `json:"media_id" validate:"omitempty,ref"`
}

type TransitionIncident struct {
	Status         string  `json:"status" validate:"required,oneof=pending in_progress resolved closed rejected"`
	ExpectedStatus string  `json:"expected_status" validate:"omitempty,oneof=pending in_progress resolved closed rejected"`
	Notes          string  `json:"notes" validate:"max=2000"`
	TeamID         string  `json:"team_id" validate:"omitempty,ref"`
	MediaID        *string `json:"media_id" validate:"omitempty,ref"`
}
