package types

import "time"

// Document is the denormalized record the engines aggregate over. FilterSlugs
// carries a key-value token for every attribute option and category the
// document belongs to, so a single pass can filter and count.
type Document struct {
	Id          string     `json:"id"`
	Slug        string     `json:"slug"`
	RubricSlug  string     `json:"rubricSlug"`
	NameI18n    I18n       `json:"nameI18n"`
	Price       float64    `json:"price"`
	FilterSlugs []string   `json:"filterSlugs"`
	Priority    int        `json:"prio,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	SearchText  string     `json:"searchText,omitempty"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	Deleted     bool       `json:"deleted,omitempty"`
}

func (d *Document) HasFilterSlug(token string) bool {
	for _, slug := range d.FilterSlugs {
		if slug == token {
			return true
		}
	}
	return false
}

type CatalogueDocument struct {
	Id         string     `json:"id"`
	Slug       string     `json:"slug"`
	RubricSlug string     `json:"rubricSlug"`
	Name       string     `json:"name"`
	Price      float64    `json:"price"`
	PriceLabel string     `json:"priceLabel"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	StartsAt   *time.Time `json:"startsAt,omitempty"`
}
