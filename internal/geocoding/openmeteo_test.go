package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(t *testing.T, h http.HandlerFunc) *OpenMeteo {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	g := NewOpenMeteo(srv.URL+"/v1/search", srv.URL+"/v1/reverse", "test-agent", 2*time.Second)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestResolveFirstResult(t *testing.T) {
	var got map[string]string
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{
			"path":     r.URL.Path,
			"name":     q.Get("name"),
			"count":    q.Get("count"),
			"language": q.Get("language"),
			"format":   q.Get("format"),
			"ua":       r.Header.Get("User-Agent"),
		}
		_, _ = w.Write([]byte(`{"results":[
			{"name":"Oslo","admin1":"Oslo","country":"Norway","latitude":59.91273,"longitude":10.74609},
			{"name":"Oslo","country":"United States","latitude":48.19,"longitude":-97.13}
		]}`))
	})

	res := g.Resolve(context.Background(), "Oslo")
	require.True(t, res.OK())
	assert.Equal(t, Found, res.Outcome)
	assert.Equal(t, "Norway", res.Place.Country)
	assert.Equal(t, 59.91273, res.Place.Latitude)
	assert.Equal(t, 10.74609, res.Place.Longitude)
	assert.Equal(t, "Oslo", res.Place.DisplayName("fallback"))

	assert.Equal(t, map[string]string{
		"path":     "/v1/search",
		"name":     "Oslo",
		"count":    "1",
		"language": "en",
		"format":   "json",
		"ua":       "test-agent",
	}, got)
}

func TestResolveNotFound(t *testing.T) {
	for name, body := range map[string]string{
		"empty results": `{"results":[]}`,
		"missing field": `{"generationtime_ms":0.5}`,
	} {
		t.Run(name, func(t *testing.T) {
			g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			res := g.Resolve(context.Background(), "Nowhereville")
			assert.Equal(t, NotFound, res.Outcome)
			assert.False(t, res.OK())
			assert.NoError(t, res.Err)
		})
	}
}

func TestResolveFailed(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	res := g.Resolve(context.Background(), "Oslo")
	assert.Equal(t, Failed, res.Outcome)
	assert.Error(t, res.Err)
	assert.False(t, res.OK())
}

func TestResolveMalformedBody(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	assert.Equal(t, Failed, g.Resolve(context.Background(), "Oslo").Outcome)
}

func TestReverseJoinsParts(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/reverse", r.URL.Path)
		assert.Equal(t, "63.43", r.URL.Query().Get("latitude"))
		_, _ = w.Write([]byte(`{"results":[{"name":"Trondheim","admin1":"","country":"Norway"}]}`))
	})

	assert.Equal(t, "Trondheim, Norway", g.Reverse(context.Background(), 63.43, 10.39))
}

func TestReverseFallsBackToCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := NewOpenMeteo(url, url, "", time.Second)
	defer g.Close()

	assert.Equal(t, "63.43,10.39", g.Reverse(context.Background(), 63.43, 10.39))
	// Two decimals, rounded.
	assert.Equal(t, "63.43,10.40", g.Reverse(context.Background(), 63.4305, 10.3951))
}

func TestReverseEmptyResults(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"name":" ","country":""}]}`))
	})
	assert.Equal(t, "-33.87,151.21", g.Reverse(context.Background(), -33.8688, 151.2093))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "failed", Failed.String())
}
