package dto

// CreateTripRequest represents the payload to create a trip
type CreateTripRequest struct {
	Title     string  `json:"title" validate:"required,max=200"`
	StartDate *string `json:"start_date"` // YYYY-MM-DD or RFC3339
	EndDate   *string `json:"end_date"`   // YYYY-MM-DD or RFC3339
	Status    string  `json:"status" validate:"omitempty,trip_status"`
}

// UpdateTripRequest represents fields allowed to update a trip
// All fields are optional; only provided ones will be updated ("" clears a date)
type UpdateTripRequest struct {
	Title     *string `json:"title" validate:"omitempty,max=200"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    *string `json:"status" validate:"omitempty,trip_status"`
}

// TripResponse represents a trip object in responses
type TripResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    string  `json:"status"`
	OwnerID   string  `json:"owner_id"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// Pagination info
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// TripListResponse envelope
type TripListResponse struct {
	Trips      []TripResponse `json:"trips"`
	Pagination Pagination     `json:"pagination"`
}

// TripPermissions for detail
type TripPermissions struct {
	CanEdit                bool `json:"can_edit"`
	CanDelete              bool `json:"can_delete"`
	CanWriteContent        bool `json:"can_write_content"`
	CanManageCollaborators bool `json:"can_manage_collaborators"`
}

// TripDetailResponse envelope
type TripDetailResponse struct {
	Trip          TripResponse           `json:"trip"`
	Days          []TimelineDay          `json:"days"`
	Collaborators []CollaboratorResponse `json:"collaborators"`
	Totals        ExpenseTotals          `json:"totals"`
	Permissions   TripPermissions        `json:"permissions"`
}

// TimelineDay is one date and its items
type TimelineDay struct {
	Date  string         `json:"date"`
	Items []ItemResponse `json:"items"`
}

// TimelineResponse is the "view by day" payload
type TimelineResponse struct {
	Dates        []string       `json:"dates"`
	SelectedDate *string        `json:"selected_date"`
	Items        []ItemResponse `json:"items"`
}

// CollaboratorRequest shares a trip with an existing user
type CollaboratorRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,role"`
}

// CollaboratorResponse is one collaborator of a trip
type CollaboratorResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}
