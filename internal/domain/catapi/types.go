package catapi

// Image is one record of the search endpoint. Only URL is read by this
// project; the rest is carried for completeness.
type Image struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// URLs returns the image URLs in order.
func URLs(images []Image) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	return urls
}
