package catapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformerrors "catgallery-server-go/internal/platform/errors"
	"catgallery-server-go/internal/platform/logging"
)

const sixImages = `[
{"id":"a1","url":"https://cdn2.thecatapi.com/images/a1.jpg","width":500,"height":400},
{"id":"b2","url":"https://cdn2.thecatapi.com/images/b2.jpg","width":640,"height":480},
{"id":"c3","url":"https://cdn2.thecatapi.com/images/c3.jpg","width":800,"height":600},
{"id":"d4","url":"https://cdn2.thecatapi.com/images/d4.jpg","width":1024,"height":768},
{"id":"e5","url":"https://cdn2.thecatapi.com/images/e5.jpg","width":300,"height":300},
{"id":"f6","url":"https://cdn2.thecatapi.com/images/f6.jpg","width":120,"height":90}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	opts.Logger = logging.Discard()
	return NewClient(opts)
}

func TestFetchRaw_PassesBodyThrough(t *testing.T) {
	body := `[{"id":"x","url":"https://example.com/x.jpg","width":1,"height":2,"breeds":[]}]`
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}, Options{})

	raw, err := client.FetchRaw(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, body, string(raw))
	assert.Equal(t, DefaultSearchPath, gotPath)
	assert.Empty(t, gotQuery)
}

func TestFetchRaw_SendsLimit(t *testing.T) {
	var gotLimit string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(sixImages))
	}, Options{})

	_, err := client.FetchRaw(context.Background(), GallerySize)
	require.NoError(t, err)
	assert.Equal(t, "6", gotLimit)
}

func TestFetchRaw_Headers(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
	}{
		{name: "without key", apiKey: ""},
		{name: "with key", apiKey: "live_123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var header http.Header
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				header = r.Header.Clone()
				_, _ = w.Write([]byte(`[]`))
			}, Options{APIKey: tt.apiKey, UserAgent: "catgallery-test"})

			_, err := client.FetchRaw(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.apiKey, header.Get("x-api-key"))
			assert.Equal(t, "catgallery-test", header.Get("User-Agent"))
		})
	}
}

func TestFetchRaw_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"message":"slow down"}`))
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>maintenance</html>"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler, Options{})
			raw, err := client.FetchRaw(context.Background(), 0)
			require.Error(t, err)
			assert.Nil(t, raw)
			assert.True(t, platformerrors.IsKind(err, platformerrors.KindUpstream))
		})
	}
}

func TestFetchRaw_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(Options{BaseURL: url, Logger: logging.Discard()})
	_, err := client.FetchRaw(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindUpstream))
}

func TestFetchRaw_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, Options{Timeout: 50 * time.Millisecond})
	defer close(release)

	_, err := client.FetchRaw(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindUpstream))
}

func TestFetchRaw_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchRaw(ctx, 0)
	require.Error(t, err)
}

func TestSearch_DecodesInOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sixImages))
	}, Options{})

	images, err := client.Search(context.Background(), GallerySize)
	require.NoError(t, err)
	require.Len(t, images, 6)
	assert.Equal(t, "a1", images[0].ID)
	assert.Equal(t, 500, images[0].Width)
	assert.Equal(t, []string{
		"https://cdn2.thecatapi.com/images/a1.jpg",
		"https://cdn2.thecatapi.com/images/b2.jpg",
		"https://cdn2.thecatapi.com/images/c3.jpg",
		"https://cdn2.thecatapi.com/images/d4.jpg",
		"https://cdn2.thecatapi.com/images/e5.jpg",
		"https://cdn2.thecatapi.com/images/f6.jpg",
	}, URLs(images))
}

func TestSearch_RejectsNonList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://example.com/a.jpg"}`))
	}, Options{})

	_, err := client.Search(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindUpstream))
}
