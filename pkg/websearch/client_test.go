package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_DigestsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "armenia jam producers", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"data":[
			{"title":"Anush's Jams","url":"https://example.com/1","description":"Homemade jams from Yerevan"},
			{"title":"Ararat Pottery","url":"https://example.com/2","content":"Handmade ceramics"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	out, err := c.Search(context.Background(), "armenia jam producers")
	require.NoError(t, err)
	assert.Contains(t, out, "Anush's Jams")
	assert.Contains(t, out, "Homemade jams from Yerevan")
	assert.Contains(t, out, "Handmade ceramics")
}

func TestSearch_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	out, err := c.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "No search results found.", out)
}

func TestSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "երևան" repeated: every rune is 2 bytes, so a 501-byte cap would land
	// mid-rune without the walk-back.
	long := strings.Repeat("երևան", 120)

	out := truncate(long, 501)
	assert.LessOrEqual(t, len(out), 501)
	assert.True(t, utf8.ValidString(out))

	short := "մուրաբա"
	assert.Equal(t, short, truncate(short, 500))
}

func TestSearch_DigestIsValidUTF8(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		long := strings.Repeat("անուշի մուրաբա ", 60)
		_, _ = w.Write([]byte(`{"code":200,"data":[{"title":"Անուշի մուրաբաներ","url":"u1","description":"` + long + `"}]}`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	out, err := c.Search(context.Background(), "մուրաբա")
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(out))
}

func TestSearch_MaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"data":[
			{"title":"One","url":"u1","description":"d1"},
			{"title":"Two","url":"u2","description":"d2"},
			{"title":"Three","url":"u3","description":"d3"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL), WithMaxResults(2))
	out, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Contains(t, out, "One")
	assert.Contains(t, out, "Two")
	assert.NotContains(t, out, "Three")
}
