package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Limits is the page size policy of one kind of listing
type Limits struct {
	Default int
	Max     int
}

var (
	// Records covers donors, hospital requests and users
	Records = Limits{Default: 20, Max: 100}

	// Inventory covers lots and the transaction log. Stock tables are read
	// whole more often than they are paged, so pages run larger.
	Inventory = Limits{Default: 50, Max: 500}
)

// DefaultLimit and MaxLimit are the Records policy
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a normalised page request
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Meta describes the returned page. From and To are 1-based item positions and
// are both 0 when the page is empty.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	From       int64 `json:"from"`
	To         int64 `json:"to"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetParams reads ?page and ?limit under the Records policy
func GetParams(c *fiber.Ctx) *Params {
	return GetParamsFor(c, Records)
}

// GetParamsFor reads ?page and ?limit under the given policy. Unparsable values fall back to defaults.
func GetParamsFor(c *fiber.Ctx, limits Limits) *Params {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return limits.New(page, limit)
}

// New normalises page and limit under the Records policy
func New(page, limit int) *Params {
	return Records.New(page, limit)
}

// New normalises page and limit: page starts at 1, limit is clamped to [1, Max]
func (l Limits) New(page, limit int) *Params {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = l.Default
	case limit > l.Max:
		limit = l.Max
	}

	return &Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetMeta describes the page params selects out of total items
func GetMeta(params *Params, total int64) *Meta {
	limit := int64(params.Limit)
	totalPages := (total + limit - 1) / limit

	meta := &Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: int(totalPages),
		HasNext:    int64(params.Page) < totalPages,
		HasPrev:    params.Page > 1,
	}
	if offset := int64(params.Offset); offset < total {
		meta.From = offset + 1
		meta.To = min(offset+limit, total)
	}
	return meta
}

// Response represents paginated response
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta"`
}

// NewResponse creates a new paginated response
func NewResponse(data interface{}, params *Params, total int64) *Response {
	return &Response{
		Data: data,
		Meta: GetMeta(params, total),
	}
}
