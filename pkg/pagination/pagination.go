package pagination

const (
	// DefaultLimit is used when a listing does not ask for a page size.
	DefaultLimit = 30
	// MaxLimit caps the page size to keep a single aggregation bounded.
	MaxLimit = 100
)

// Page is the resolved pagination of one listing response.
type Page struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Skip       int `json:"skip"`
	TotalDocs  int `json:"totalDocs"`
	TotalPages int `json:"totalPages"`
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampLimit replaces a missing or non-positive limit with fallback and caps it at max.
func ClampLimit(limit, fallback, max int) int {
	if max <= 0 {
		max = MaxLimit
	}
	if fallback <= 0 {
		fallback = DefaultLimit
	}
	if limit <= 0 {
		limit = fallback
	}
	return clamp(limit, 1, max)
}

func Skip(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	return (page - 1) * limit
}

func TotalPages(totalDocs, limit int) int {
	if totalDocs <= 0 || limit <= 0 {
		return 0
	}
	return (totalDocs + limit - 1) / limit
}

// ClampPage keeps page within [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	return clamp(page, 1, max(totalPages, 1))
}

// Resolve clamps the requested page against the document count.
func Resolve(page, limit, totalDocs int) Page {
	if limit < 1 {
		limit = DefaultLimit
	}
	totalPages := TotalPages(totalDocs, limit)
	page = ClampPage(page, totalPages)
	return Page{
		Page:       page,
		Limit:      limit,
		Skip:       Skip(page, limit),
		TotalDocs:  totalDocs,
		TotalPages: totalPages,
	}
}
