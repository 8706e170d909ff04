package request

type CreateResource struct {
	Name         string `json:"name" validate:"required,max=120"`
	Category     string `json:"category" validate:"required,oneof=vehicle equipment personnel"`
	Description  string `json:"description" validate:"max=2000"`
	Location     string `json:"location" validate:"max=255"`
	Availability string `json:"availability" validate:"omitempty,oneof=available maintenance unavailable"`
}

type UpdateAvailability struct {
	Availability string `json:"availability" validate:"required,oneof=available in_use maintenance unavailable"`
}

type AssignResource struct {
	ResourceID string `json:"resource_id" validate:"required"`
	Notes      string `json:"notes" validate:"max=2000"`
}
