package dto

// ChecklistItemRequest is one line to add
type ChecklistItemRequest struct {
	Category string `json:"category" validate:"max=100"`
	Item     string `json:"item" validate:"required,max=200"`
}

// ChecklistItemsRequest adds one or more lines
type ChecklistItemsRequest struct {
	Items []ChecklistItemRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

// ChecklistItemUpdateRequest edits one line
type ChecklistItemUpdateRequest struct {
	Category  *string `json:"category" validate:"omitempty,max=100"`
	Item      *string `json:"item" validate:"omitempty,min=1,max=200"`
	IsChecked *bool   `json:"is_checked"`
}

// ChecklistItemResponse is one line of the list
type ChecklistItemResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Item      string `json:"item"`
	IsChecked bool   `json:"is_checked"`
}

// ChecklistCategory groups lines for display
type ChecklistCategory struct {
	Name  string                  `json:"name"`
	Items []ChecklistItemResponse `json:"items"`
}

// ChecklistResponse is the whole packing list
type ChecklistResponse struct {
	ID         string              `json:"id"`
	TripID     string              `json:"trip_id"`
	Total      int                 `json:"total"`
	Checked    int                 `json:"checked"`
	Categories []ChecklistCategory `json:"categories"`
}
