package gallery

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catgallery-server-go/internal/platform/errors"
)

const testPage = `<!DOCTYPE html><html><body>
<img id="heroCatImage" src="old.jpg">
<div id="galleryContainer"><p>placeholder</p><img src="stale.jpg"></div>
</body></html>`

func parseTestPage(t *testing.T) *HTMLDocument {
	t.Helper()
	doc, err := ParseHTML(strings.NewReader(testPage))
	require.NoError(t, err)
	return doc
}

func TestHTMLDocument_SetImageSource(t *testing.T) {
	doc := parseTestPage(t)

	require.NoError(t, doc.SetImageSource("heroCatImage", "new.jpg"))
	src, ok := doc.Attribute("heroCatImage", "src")
	assert.True(t, ok)
	assert.Equal(t, "new.jpg", src)
}

func TestHTMLDocument_SetImageSourceAddsAttribute(t *testing.T) {
	doc, err := ParseHTML(strings.NewReader(`<img id="bare">`))
	require.NoError(t, err)

	require.NoError(t, doc.SetImageSource("bare", "x.jpg"))
	src, ok := doc.Attribute("bare", "src")
	assert.True(t, ok)
	assert.Equal(t, "x.jpg", src)
}

func TestHTMLDocument_ReplaceImages(t *testing.T) {
	doc := parseTestPage(t)

	require.NoError(t, doc.ReplaceImages("galleryContainer", []string{"1.jpg", "2.jpg", "3.jpg"}))
	assert.Equal(t, []string{"1.jpg", "2.jpg", "3.jpg"}, doc.ImageSources("galleryContainer"))

	var out bytes.Buffer
	require.NoError(t, doc.Render(&out))
	assert.NotContains(t, out.String(), "placeholder")
	assert.NotContains(t, out.String(), "stale.jpg")

	require.NoError(t, doc.ReplaceImages("galleryContainer", nil))
	assert.Empty(t, doc.ImageSources("galleryContainer"))
}

func TestHTMLDocument_MissingElement(t *testing.T) {
	doc := parseTestPage(t)

	err := doc.SetImageSource("nope", "x.jpg")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindGallery))

	err = doc.ReplaceImages("nope", []string{"x.jpg"})
	require.Error(t, err)

	_, ok := doc.Attribute("nope", "src")
	assert.False(t, ok)
	assert.Nil(t, doc.ImageSources("nope"))
}

func TestHTMLDocument_RenderEscapes(t *testing.T) {
	doc := parseTestPage(t)
	require.NoError(t, doc.ReplaceImages("galleryContainer", []string{`https://x/a.jpg?a=1&b="2"`}))

	var out bytes.Buffer
	require.NoError(t, doc.Render(&out))
	assert.Contains(t, out.String(), `src="https://x/a.jpg?a=1&amp;b=&#34;2&#34;"`)
}

func TestHTMLDocument_ConcurrentReplace(t *testing.T) {
	doc := parseTestPage(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = doc.ReplaceImages("galleryContainer", []string{"a", "b", "c", "d", "e", "f"})
		}()
	}
	wg.Wait()

	assert.Len(t, doc.ImageSources("galleryContainer"), 6)
}
