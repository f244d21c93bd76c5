// internal/models/content.go
package models

import "time"

type Country struct {
	ID          int       `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Summary     string    `json:"summary"`
	VisaInfo    string    `json:"visaInfo,omitempty"`
	HeroImage   string    `json:"heroImage,omitempty"`
	ProcessDays int       `json:"processDays,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type BlogPost struct {
	ID          int       `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Body        string    `json:"body,omitempty"`
	Author      string    `json:"author,omitempty"`
	CoverImage  string    `json:"coverImage,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

type TripPackage struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	CountrySlug  string   `json:"countrySlug"`
	DurationDays int      `json:"durationDays"`
	PriceFrom    float64  `json:"priceFrom"`
	Currency     string   `json:"currency"`
	Summary      string   `json:"summary"`
	Highlights   []string `json:"highlights,omitempty"`
	Image        string   `json:"image,omitempty"`
}

// SearchHit is one site search result.
type SearchHit struct {
	Type    string  `json:"type"`
	Key     string  `json:"key"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet,omitempty"`
	Score   float64 `json:"score"`
}
