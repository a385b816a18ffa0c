package folio

import "time"

// ListQuery is bound from the folio listing query string.
type ListQuery struct {
	Search string `form:"search" validate:"max=120"`
	Date   string `form:"date" validate:"omitempty,datetime=2006-01-02"`
}

// Query is the resolved request passed to Service.Build.
type Query struct {
	Search string
	Date   time.Time
}
