package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Banner struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ImageURL  string             `bson:"imageUrl" json:"imageUrl"`
	PublicID  string             `bson:"publicId" json:"publicId"`
	Link      string             `bson:"link,omitempty" json:"link,omitempty"`
	StartDate *time.Time         `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// VisibleAt reports whether the banner may be shown publicly at now:
// active, and inside its optional window.
func (b Banner) VisibleAt(now time.Time) bool {
	if !b.Active {
		return false
	}
	if b.StartDate != nil && b.StartDate.After(now) {
		return false
	}
	if b.EndDate != nil && b.EndDate.Before(now) {
		return false
	}
	return true
}

// NewBanner reads link and window dates from a form. The image fields are
// filled in once the upload succeeds.
func NewBanner(form FormValues) (Banner, error) {
	b := Banner{
		Link:      form.Get("link"),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	var err error
	if b.StartDate, err = parseDate("startDate", form.Get("startDate"), false); err != nil {
		return Banner{}, err
	}
	if b.EndDate, err = parseDate("endDate", form.Get("endDate"), true); err != nil {
		return Banner{}, err
	}
	if b.StartDate != nil && b.EndDate != nil && b.EndDate.Before(*b.StartDate) {
		return Banner{}, invalid("endDate", "endDate must not be before startDate")
	}
	return b, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// parseDate accepts RFC 3339, a datetime-local value, or a bare date. A bare
// end date covers the whole day.
func parseDate(field, raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" && endOfDay {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		t = t.UTC()
		return &t, nil
	}
	return nil, invalid(field, "%s must be a date (YYYY-MM-DD or RFC 3339)", field)
}
