package tmdb

import "net/url"

const (
	siteYouTube  = "YouTube"
	typeTrailer  = "Trailer"
	typeTeaser   = "Teaser"
	jobDirector  = "Director"
	youTubeEmbed = "https://www.youtube.com/embed/"
	youTubeWatch = "https://www.youtube.com/watch"
)

// trailerRanks are tried in order; within a rank the first video in source order wins.
var trailerRanks = []func(Video) bool{
	func(v Video) bool { return v.Site == siteYouTube && v.Type == typeTrailer && v.Official },
	func(v Video) bool { return v.Site == siteYouTube && v.Type == typeTeaser },
	func(v Video) bool { return v.Site == siteYouTube },
}

// SelectTrailer picks an official YouTube trailer, else a YouTube teaser,
// else any YouTube video. It returns nil when no video is hosted on YouTube.
func SelectTrailer(videos []Video) *Video {
	for _, match := range trailerRanks {
		for i := range videos {
			if match(videos[i]) {
				v := videos[i]
				return &v
			}
		}
	}
	return nil
}

// EmbedURL returns the YouTube embed player URL, or "" for other hosts.
func (v Video) EmbedURL() string {
	if v.Site != siteYouTube || v.Key == "" {
		return ""
	}
	return youTubeEmbed + url.PathEscape(v.Key)
}

// WatchURL returns the YouTube watch page URL, or "" for other hosts.
func (v Video) WatchURL() string {
	if v.Site != siteYouTube || v.Key == "" {
		return ""
	}
	return youTubeWatch + "?" + url.Values{"v": {v.Key}}.Encode()
}

// projectCredits keeps the first "Director" crew entry and the first three cast entries.
func projectCredits(resp creditsResponse) *Credits {
	credits := &Credits{Cast: make([]CastMember, 0, castLimit)}

	for _, p := range resp.Crew {
		if p.Job == jobDirector {
			credits.Director = &Director{ID: p.ID, Name: p.Name, ProfilePath: p.ProfilePath}
			break
		}
	}

	for i, p := range resp.Cast {
		if i == castLimit {
			break
		}
		credits.Cast = append(credits.Cast, CastMember{
			ID:          p.ID,
			Name:        p.Name,
			Character:   p.Character,
			ProfilePath: p.ProfilePath,
		})
	}
	return credits
}
