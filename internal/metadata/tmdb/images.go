package tmdb

// Image size tokens understood by the TMDb image host.
const (
	SizePoster   = "w500"
	SizeBackdrop = "original"
	SizeProfile  = "w185"
	SizeThumb    = "w92"

	defaultImageSize = SizePoster
)

// ImageURL joins the image host base, a size token and an image path.
// An empty path yields "" (no image); an empty size uses w500. No request is made.
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = defaultImageSize
	}
	return c.imageBaseURL + size + path
}
