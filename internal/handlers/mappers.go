package handlers

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/finance"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/utils"
)

func toUserResponse(u models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		CreatedAt:   utils.FormatTimestamp(u.CreatedAt),
		UpdatedAt:   utils.FormatTimestamp(u.UpdatedAt),
	}
}

func toTripResponse(t models.Trip, role string) dto.TripResponse {
	return dto.TripResponse{
		ID:        t.ID.String(),
		Title:     t.Title,
		StartDate: utils.FormatDatePtr(t.StartDate),
		EndDate:   utils.FormatDatePtr(t.EndDate),
		Status:    t.Status,
		OwnerID:   t.UserID.String(),
		Role:      role,
		CreatedAt: utils.FormatTimestamp(t.CreatedAt),
		UpdatedAt: utils.FormatTimestamp(t.UpdatedAt),
	}
}

func formatLocal(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(time.RFC3339)
}

func coordinate(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(6)
	return &s
}

func toItemResponse(it models.TripItem, loc *time.Location) dto.ItemResponse {
	resp := dto.ItemResponse{
		ID:              it.ID.String(),
		TripID:          it.TripID.String(),
		ItemType:        it.ItemType,
		Name:            it.Name,
		StartDatetime:   formatLocal(it.StartDatetime, loc),
		LocationAddress: it.LocationAddress,
		LocationLat:     coordinate(it.LocationLat),
		LocationLng:     coordinate(it.LocationLng),
		Notes:           it.Notes,
		ReminderHours:   it.ReminderHours,
		ReminderSent:    it.ReminderSent,
		CreatedAt:       utils.FormatTimestamp(it.CreatedAt),
		UpdatedAt:       utils.FormatTimestamp(it.UpdatedAt),
	}
	if it.EndDatetime != nil {
		end := formatLocal(*it.EndDatetime, loc)
		resp.EndDatetime = &end
	}
	if it.HasWeather() {
		resp.Weather = &dto.WeatherSnapshot{
			Temp:      deref(it.WeatherTemp),
			Condition: deref(it.WeatherCondition),
			Icon:      deref(it.WeatherIcon),
		}
	}
	return resp
}

func toItemResponses(items []models.TripItem, loc *time.Location) []dto.ItemResponse {
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it, loc))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toExpenseResponse(e models.Expense, tripTitle string, rate decimal.Decimal) dto.ExpenseResponse {
	resp := dto.ExpenseResponse{
		ID:              e.ID.String(),
		TripID:          e.TripID.String(),
		TripTitle:       tripTitle,
		Description:     e.Description,
		Amount:          e.Amount.StringFixed(2),
		Currency:        e.Currency,
		Category:        e.Category,
		Date:            utils.FormatDate(e.Date),
		IsPaid:          e.IsPaid,
		Rate:            rate.String(),
		ConvertedAmount: currency.Convert(e.Amount, rate).StringFixed(2),
	}
	if e.ItemID != nil {
		id := e.ItemID.String()
		resp.ItemID = &id
	}
	return resp
}

func toTotals(s finance.Summary) dto.ExpenseTotals {
	byCategory := make(map[string]string, len(s.ByCategory))
	for k, v := range s.ByCategory {
		byCategory[k] = v.StringFixed(2)
	}
	return dto.ExpenseTotals{
		Currency:   string(currency.BaseCurrency),
		Total:      s.Total.StringFixed(2),
		Paid:       s.Paid.StringFixed(2),
		Unpaid:     s.Unpaid.StringFixed(2),
		ByCategory: byCategory,
	}
}

func toChartSeries(points []finance.ChartPoint) dto.ChartSeries {
	series := dto.ChartSeries{Labels: make([]string, 0, len(points)), Values: make([]string, 0, len(points))}
	for _, p := range points {
		series.Labels = append(series.Labels, p.Label)
		series.Values = append(series.Values, p.Value.StringFixed(2))
	}
	return series
}

func toCollaboratorResponse(c models.Collaborator) dto.CollaboratorResponse {
	return dto.CollaboratorResponse{
		UserID:    c.UserID.String(),
		Email:     c.Email,
		Username:  c.Username,
		Role:      c.Role,
		CreatedAt: utils.FormatTimestamp(c.CreatedAt),
	}
}

// toChecklistResponse groups lines by category in alphabetical order,
// keeping each category's lines in the order given.
func toChecklistResponse(cl models.Checklist, items []models.ChecklistItem) dto.ChecklistResponse {
	resp := dto.ChecklistResponse{
		ID:         cl.ID.String(),
		TripID:     cl.TripID.String(),
		Total:      len(items),
		Categories: []dto.ChecklistCategory{},
	}
	groups := map[string][]dto.ChecklistItemResponse{}
	for _, it := range items {
		if it.IsChecked {
			resp.Checked++
		}
		groups[it.Category] = append(groups[it.Category], dto.ChecklistItemResponse{
			ID:        it.ID.String(),
			Category:  it.Category,
			Item:      it.Item,
			IsChecked: it.IsChecked,
		})
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		resp.Categories = append(resp.Categories, dto.ChecklistCategory{Name: name, Items: groups[name]})
	}
	return resp
}

func toAttachmentResponse(a models.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:          a.ID.String(),
		ItemID:      a.ItemID.String(),
		Title:       a.Title,
		ContentType: a.ContentType,
		Size:        a.Size,
		UploadedAt:  utils.FormatTimestamp(a.UploadedAt),
		DownloadURL: "/api/attachments/" + a.ID.String() + "/download",
	}
}

func toPhotoResponse(p models.Photo) dto.PhotoResponse {
	resp := dto.PhotoResponse{
		ID:          p.ID.String(),
		TripID:      p.TripID.String(),
		Caption:     p.Caption,
		ContentType: p.ContentType,
		Size:        p.Size,
		UploadedAt:  utils.FormatTimestamp(p.UploadedAt),
		DownloadURL: "/api/photos/" + p.ID.String() + "/download",
	}
	if p.TakenAt != nil {
		s := utils.FormatTimestamp(*p.TakenAt)
		resp.TakenAt = &s
	}
	return resp
}

func toAccessLogResponse(l models.AccessLog) dto.AccessLogResponse {
	resp := dto.AccessLogResponse{
		ID:        l.ID.String(),
		Email:     l.Email,
		Action:    l.Action,
		IPAddress: l.IPAddress,
		Timestamp: utils.FormatTimestamp(l.Timestamp),
	}
	if l.UserID != nil {
		id := l.UserID.String()
		resp.UserID = &id
	}
	return resp
}

// maskSecret keeps only the last four characters of a secret.
func maskSecret(v string) string {
	switch {
	case v == "":
		return ""
	case len(v) <= 4:
		return "****"
	default:
		return "****" + v[len(v)-4:]
	}
}

func toAPIKeyResponse(c models.APIConfiguration) dto.APIKeyResponse {
	updated := utils.FormatTimestamp(c.UpdatedAt)
	return dto.APIKeyResponse{
		Key:         c.Key,
		MaskedValue: maskSecret(c.Value),
		Configured:  c.Value != "",
		IsActive:    c.IsActive,
		Description: c.Description,
		UpdatedAt:   &updated,
	}
}

func toEmailConfigResponse(c models.EmailConfiguration) dto.EmailConfigResponse {
	resp := dto.EmailConfigResponse{
		Host:             c.Host,
		Port:             c.Port,
		Username:         c.Username,
		PasswordSet:      c.Password != "",
		UseTLS:           c.UseTLS,
		UseSSL:           c.UseSSL,
		DefaultFromEmail: c.DefaultFromEmail,
	}
	if !c.UpdatedAt.IsZero() {
		s := utils.FormatTimestamp(c.UpdatedAt)
		resp.UpdatedAt = &s
	}
	return resp
}
