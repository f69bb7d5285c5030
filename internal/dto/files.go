package dto

// AttachmentResponse describes an uploaded item attachment
type AttachmentResponse struct {
	ID          string `json:"id"`
	ItemID      string `json:"item_id"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	UploadedAt  string `json:"uploaded_at"`
	DownloadURL string `json:"download_url"`
}

// PhotoResponse describes a gallery photo
type PhotoResponse struct {
	ID          string  `json:"id"`
	TripID      string  `json:"trip_id"`
	Caption     string  `json:"caption"`
	ContentType string  `json:"content_type"`
	Size        int64   `json:"size"`
	TakenAt     *string `json:"taken_at"`
	UploadedAt  string  `json:"uploaded_at"`
	DownloadURL string  `json:"download_url"`
}

// CalendarImportResponse reports what an .ics import created
type CalendarImportResponse struct {
	Imported int            `json:"imported"`
	Items    []ItemResponse `json:"items"`
}
