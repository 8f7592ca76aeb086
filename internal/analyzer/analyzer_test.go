package analyzer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelesov/urlwords/internal/models"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Gopher news</title>
  <style>body { color: red; }</style>
  <script>var hidden = "javascript javascript javascript";</script>
</head>
<body>
  <nav>ignored navigation words</nav>
  <p>Gopher gopher gopher tunnels tunnels burrow.</p>
  <p>The gopher digs a burrow and the burrow is deep.</p>
  <footer>ignored footer words</footer>
</body>
</html>`

func newTestService() *Service {
	return New(5*time.Second, 1<<20, "urlwords-test")
}

func TestAnalyzeURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "urlwords-test", r.Header.Get("User-Agent"))
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	got, err := newTestService().AnalyzeURL(context.Background(), srv.URL)
	require.NoError(t, err)

	// the title text counts too: 1 there + 3 in the first paragraph
	// + 1 in the second
	want := models.WordCounts{
		{Word: "gopher", Count: 5},
		{Word: "burrow", Count: 3},
		{Word: "tunnels", Count: 2},
		{Word: "deep", Count: 1},
		{Word: "digs", Count: 1},
	}
	assert.Equal(t, want, got)
}

func TestFetch_RejectsBadScheme(t *testing.T) {
	t.Parallel()

	s := newTestService()
	for _, u := range []string{"", "ftp://example.com", "example.com"} {
		_, err := s.Fetch(context.Background(), u)
		assert.ErrorIs(t, err, ErrInvalidURL, "url %q", u)
	}
}

func TestFetch_RejectsErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestService().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetch_RejectsOversizedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 2048)))
	}))
	defer srv.Close()

	s := New(5*time.Second, 1024, "urlwords-test")
	_, err := s.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrContentTooLarge)
}

func TestExtractText_SkipsNonContentTags(t *testing.T) {
	t.Parallel()

	text, err := ExtractText(samplePage)
	require.NoError(t, err)

	assert.Contains(t, text, "tunnels")
	assert.NotContains(t, text, "javascript")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "navigation")
	assert.NotContains(t, text, "footer words")
}

func TestTopWords(t *testing.T) {
	t.Parallel()

	t.Run("filters stop words and short words", func(t *testing.T) {
		got, err := TopWords("the cat and the cat sat on a very big mat", 10)
		require.NoError(t, err)
		assert.Equal(t, models.WordCounts{
			{Word: "cat", Count: 2},
			{Word: "big", Count: 1},
			{Word: "mat", Count: 1},
			{Word: "sat", Count: 1},
		}, got)
	})

	t.Run("caps at n with deterministic ties", func(t *testing.T) {
		got, err := TopWords("zebra yak xerus walrus", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		// equal counts break alphabetically
		assert.Equal(t, "walrus", got[0].Word)
		assert.Equal(t, "xerus", got[1].Word)
	})

	t.Run("nothing left after filtering", func(t *testing.T) {
		_, err := TopWords("the and was a of to", 5)
		assert.ErrorIs(t, err, ErrNoContent)

		_, err = TopWords("", 5)
		assert.ErrorIs(t, err, ErrNoContent)
	})
}
