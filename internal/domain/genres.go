package domain

// Genre is an entry of the closed catalog genre vocabulary.
type Genre struct {
	ID   int
	Name string
}

// Genres is the closed vocabulary of movie genres understood by the catalog.
var Genres = []Genre{
	{28, "Action"},
	{12, "Adventure"},
	{16, "Animation"},
	{35, "Comedy"},
	{80, "Crime"},
	{99, "Documentary"},
	{18, "Drama"},
	{10751, "Family"},
	{14, "Fantasy"},
	{36, "History"},
	{27, "Horror"},
	{10402, "Music"},
	{9648, "Mystery"},
	{10749, "Romance"},
	{878, "Science Fiction"},
	{10770, "TV Movie"},
	{53, "Thriller"},
	{10752, "War"},
	{37, "Western"},
}

var (
	genreByID   = make(map[int]string, len(Genres))
	genreByName = make(map[string]int, len(Genres))
)

func init() {
	for _, g := range Genres {
		genreByID[g.ID] = g.Name
		genreByName[g.Name] = g.ID
	}
}

// GenreName returns the genre name for a catalog genre id.
func GenreName(id int) (string, bool) {
	name, ok := genreByID[id]
	return name, ok
}

// GenreID returns the catalog genre id for a genre name.
func GenreID(name string) (int, bool) {
	id, ok := genreByName[name]
	return id, ok
}

// IsGenre reports whether name belongs to the vocabulary.
func IsGenre(name string) bool {
	_, ok := genreByName[name]
	return ok
}
