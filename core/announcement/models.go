package announcement

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/dams-project/backend/core"
)

// Categories
const (
	CategoryPlacement = "Placement"
	CategoryResult    = "Result"
	CategoryEvents    = "Events"
	CategoryAlerts    = "Alerts"
	CategoryGeneral   = "General"
)

var categories = map[string]struct{}{
	CategoryPlacement: {},
	CategoryResult:    {},
	CategoryEvents:    {},
	CategoryAlerts:    {},
	CategoryGeneral:   {},
}

// NormalizeCategory maps unknown categories to General.
func NormalizeCategory(c string) string {
	if _, ok := categories[c]; ok {
		return c
	}
	return CategoryGeneral
}

// Announcement is a department-wide notice, optionally with one attachment.
// At most one announcement is the marquee item at any time.
type Announcement struct {
	ID        int64       `json:"id" db:"id"`
	Title     string      `json:"title" db:"title"`
	Message   string      `json:"message" db:"message"`
	AuthorID  string      `json:"author_id" db:"author_id"`
	Category  string      `json:"category" db:"category"`
	IsMarquee bool        `json:"is_marquee" db:"is_marquee"`
	FileName  null.String `json:"file_name" db:"file_name"`
	FileType  null.String `json:"-" db:"file_type"`
	FileData  null.Bytes  `json:"-" db:"file_data"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
}

// HasAttachment reports whether an attachment was stored with the notice.
func (a Announcement) HasAttachment() bool { return a.FileName.Valid }

// NewAnnouncement contains information needed to publish an Announcement.
// An attachment, if any, arrives out of band as multipart content.
type NewAnnouncement struct {
	Title     string `json:"title" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Category  string `json:"category"`
	IsMarquee bool   `json:"is_marquee"`
	FileName  string `json:"-"`
	FileType  string `json:"-"`
	FileData  []byte `json:"-"`
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Message = core.CleanString(na.Message)
	na.Category = NormalizeCategory(core.CleanString(na.Category))
	return core.Validate.Struct(na)
}
