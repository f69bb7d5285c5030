package dto

// ItineraryRequest asks for a generated itinerary
type ItineraryRequest struct {
	Interests string `json:"interests" validate:"max=500"`
}

// AIChecklistResponse reports the generated packing list
type AIChecklistResponse struct {
	Added     int               `json:"added"`
	Checklist ChecklistResponse `json:"checklist"`
}

// AIItineraryResponse lists the items created from the suggestion
type AIItineraryResponse struct {
	Created []ItemResponse `json:"created"`
}

// InsightsResponse is the destination briefing
type InsightsResponse struct {
	Destination string `json:"destination"`
	CurrencyTip string `json:"currency_tip"`
	Plug        string `json:"plug"`
	Phrases     string `json:"phrases"`
	Safety      string `json:"safety"`
	Curiosity   string `json:"curiosity"`
}
