// Package fixtures provides catalog and model API payloads for adapter tests.
package fixtures

import "fmt"

// GenerateDiscoverPage creates a discover/search page with n movies released
// in year. Every third movie has no poster.
func GenerateDiscoverPage(page, totalPages, n, year int) string {
	results := ""
	for i := range n {
		id := page*1000 + i
		poster := fmt.Sprintf(`"/poster%d.jpg"`, id)
		if i%3 == 2 {
			poster = "null"
		}
		if i > 0 {
			results += ","
		}
		results += fmt.Sprintf(`{
      "id": %d,
      "title": "Movie %d",
      "poster_path": %s,
      "genre_ids": [18, 10749],
      "release_date": "%d-05-17",
      "overview": "A story about loss and memories.",
      "vote_average": 7.4,
      "vote_count": 812,
      "popularity": 31.2
    }`, id, id, poster, year)
	}
	return fmt.Sprintf(`{"page": %d, "total_pages": %d, "total_results": %d, "results": [%s]}`,
		page, totalPages, totalPages*n, results)
}

// GenerateInceptionSearch creates a search page with a single well-known title.
func GenerateInceptionSearch() string {
	return `{
  "page": 1,
  "total_pages": 1,
  "total_results": 1,
  "results": [
    {
      "id": 27205,
      "title": "Inception",
      "poster_path": "/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg",
      "genre_ids": [28, 878, 12],
      "release_date": "2010-07-15",
      "overview": "Cobb, a skilled thief who commits corporate espionage by infiltrating the subconscious of his targets...",
      "vote_average": 8.4
    }
  ]
}`
}

// GenerateEmptyPage creates a page with no results.
func GenerateEmptyPage() string {
	return `{"page": 1, "total_pages": 0, "total_results": 0, "results": []}`
}

// GenerateWatchProviders creates a watch providers payload for two regions.
func GenerateWatchProviders() string {
	return `{
  "id": 27205,
  "results": {
    "US": {
      "link": "https://www.themoviedb.org/movie/27205-inception/watch?locale=US",
      "flatrate": [
        {"provider_id": 8, "provider_name": "Netflix", "display_priority": 1},
        {"provider_id": 1899, "provider_name": "Max", "display_priority": 2}
      ],
      "rent": [
        {"provider_id": 2, "provider_name": "Apple TV", "display_priority": 3}
      ]
    },
    "GB": {
      "link": "https://www.themoviedb.org/movie/27205-inception/watch?locale=GB",
      "rent": [
        {"provider_id": 2, "provider_name": "Apple TV", "display_priority": 3}
      ]
    }
  }
}`
}

// GenerateStatusError creates the catalog error envelope.
func GenerateStatusError(code int, message string) string {
	return fmt.Sprintf(`{"success": false, "status_code": %d, "status_message": %q}`, code, message)
}

// GenerateChatCompletion wraps content as a chat completion response.
func GenerateChatCompletion(content string) string {
	return fmt.Sprintf(`{
  "id": "chatcmpl-123",
  "object": "chat.completion",
  "model": "gpt-4o-mini",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}
  ]
}`, content)
}

// GenerateSadNinetiesExtract creates a model extract for "sad movies from the 90s".
func GenerateSadNinetiesExtract() string {
	return `{"year": null, "yearRange": {"start": 1990, "end": 1999}, "language": null, "region": null,
"genres": ["Drama"], "excludeGenres": null, "moodTags": ["sad"], "intent": {"top": false, "latest": false, "award": false},
"titleCandidate": null, "subjective": true}`
}
