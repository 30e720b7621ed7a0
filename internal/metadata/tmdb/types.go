package tmdb

import "strconv"

// Movie is one catalog item as returned by the list, discover and search endpoints.
// Empty PosterPath/BackdropPath mean the image is absent.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int   `json:"genre_ids"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
}

// Year returns the release year, or 0 when the release date is unknown.
func (m Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// MoviePage is one page of a paginated catalog listing.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// MovieDetails represents detailed movie information.
type MovieDetails struct {
	Movie
	Runtime int     `json:"runtime"`
	Status  string  `json:"status"`
	Tagline string  `json:"tagline"`
	IMDbID  string  `json:"imdb_id"`
	Genres  []Genre `json:"genres"`
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Video is one entry of a movie's video list.
type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// Credits holds the director (nil when unknown) and the top-billed cast.
type Credits struct {
	Director *Director    `json:"director"`
	Cast     []CastMember `json:"cast"`
}

// Director is the crew member credited with the "Director" job.
type Director struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
}

// CastMember is one billed actor.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

// videosResponse wraps the /movie/{id}/videos endpoint response.
type videosResponse struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

// creditsResponse wraps the /movie/{id}/credits endpoint response.
type creditsResponse struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []crewMember `json:"crew"`
}

type crewMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

// errorResponse is the body TMDb returns with non-2xx statuses.
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
