package matters

// CreateMatterRequest carries validated input for opening a matter.
type CreateMatterRequest struct {
	Title      string `json:"title" validate:"required,min=3,max=200"`
	ClientName string `json:"clientName" validate:"required,min=2,max=160"`
}

// UpdateMatterRequest carries validated input for editing a matter.
type UpdateMatterRequest struct {
	Title      string `json:"title" validate:"required,min=3,max=200"`
	ClientName string `json:"clientName" validate:"required,min=2,max=160"`
	Status     string `json:"status" validate:"required,oneof=OPEN CLOSED ARCHIVED"`
}

// ListMattersRequest carries list filters.
type ListMattersRequest struct {
	Status *MatterStatus
	Search *string
	Limit  int
	Offset int
}

// CreateCaseRequest carries validated input for filing a case record.
type CreateCaseRequest struct {
	Title string `json:"title" validate:"required,min=3,max=200"`
	Court string `json:"court" validate:"max=160"`
	Notes string `json:"notes" validate:"max=4000"`
}
