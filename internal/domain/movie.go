// Package domain contains the core business entities and rules.
package domain

// Movie is a candidate title returned to the caller.
type Movie struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	PosterURL   string   `json:"poster_url"` // Never empty; posterless records are dropped upstream
	Genres      []string `json:"genres"`
	ReleaseYear int      `json:"release_year,omitempty"`
	Overview    string   `json:"overview"`
	Rating      float64  `json:"rating"`
	Category    string   `json:"category"`
	Providers   []string `json:"providers"` // Empty for ad hoc search results
}

// CatalogPage is one page of results from the movie catalog.
type CatalogPage struct {
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
	Movies     []Movie `json:"movies"`
}

// DefaultCategory is used when no genre maps to a category.
const DefaultCategory = "popular"

var categoryByGenre = map[string]string{
	"Horror":          "horror",
	"Thriller":        "thriller",
	"Comedy":          "comedy",
	"Romance":         "romance",
	"Animation":       "animation",
	"Family":          "family",
	"Documentary":     "documentary",
	"Science Fiction": "scifi",
	"Action":          "action",
	"Drama":           "drama",
}

// InferCategory returns the category tag for a genre list.
// The first genre with a known category wins.
func InferCategory(genres []string) string {
	for _, g := range genres {
		if c, ok := categoryByGenre[g]; ok {
			return c
		}
	}
	return DefaultCategory
}
