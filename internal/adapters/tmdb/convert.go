package tmdb

import (
	"strconv"

	"cinematch/internal/domain"
)

type movieResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	GenreIDs    []int   `json:"genre_ids"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

type pageResponse struct {
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Results    []movieResult `json:"results"`
}

type providersResponse struct {
	Results map[string]struct {
		Flatrate []struct {
			ProviderName string `json:"provider_name"`
		} `json:"flatrate"`
	} `json:"results"`
}

// toCatalogPage converts a raw page, dropping records without a poster.
func (c *Client) toCatalogPage(resp pageResponse) domain.CatalogPage {
	page := domain.CatalogPage{
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
		Movies:     make([]domain.Movie, 0, len(resp.Results)),
	}
	for _, r := range resp.Results {
		if r.PosterPath == "" {
			continue
		}
		page.Movies = append(page.Movies, c.toMovie(r))
	}
	return page
}

func (c *Client) toMovie(r movieResult) domain.Movie {
	genres := make([]string, 0, len(r.GenreIDs))
	for _, id := range r.GenreIDs {
		if name, ok := domain.GenreName(id); ok {
			genres = append(genres, name)
		}
	}
	return domain.Movie{
		ID:          strconv.Itoa(r.ID),
		Title:       r.Title,
		PosterURL:   c.cfg.ImageBaseURL + r.PosterPath,
		Genres:      genres,
		ReleaseYear: releaseYear(r.ReleaseDate),
		Overview:    r.Overview,
		Rating:      r.VoteAverage,
		Category:    domain.InferCategory(genres),
		Providers:   []string{},
	}
}

// releaseYear reads the year of a YYYY-MM-DD date; 0 when absent.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
