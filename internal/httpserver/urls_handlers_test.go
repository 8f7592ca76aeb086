package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelesov/urlwords/internal/models"
)

const testPage = `<html><head><title>words</title></head><body>
<p>coffee coffee coffee beans beans roast</p>
</body></html>`

func TestAnalyzeAndHistoryEndpoints(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	session := registerAndLogin(t, e)

	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer pageSrv.Close()

	rec := doJSON(t, e, http.MethodPost, "/api/v1/urls/analyze", analyzeRequest{URL: pageSrv.URL}, session.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var a models.URLAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, pageSrv.URL, a.URL)
	require.NotEmpty(t, a.TopWords)
	assert.Equal(t, models.WordCount{Word: "coffee", Count: 3}, a.TopWords[0])
	assert.Equal(t, session.User.ID, a.UserID)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/urls/history", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var page paginatedAnalyses
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.Pages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, pageSrv.URL, page.Items[0].URL)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/urls/history/all", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 1, page.Total)
}

func TestAnalyzeEndpoint_RejectsBadURL(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	session := registerAndLogin(t, e)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/urls/analyze", analyzeRequest{URL: "ftp://example.com"}, session.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpoint_WithoutElasticsearch(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	session := registerAndLogin(t, e)

	rec := doJSON(t, e, http.MethodGet, "/api/v1/urls/search?q=coffee", nil, session.AccessToken)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHistoryEndpoint_ClampsPagination(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	session := registerAndLogin(t, e)

	rec := doJSON(t, e, http.MethodGet, "/api/v1/urls/history?page=-3&size=9999", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var page paginatedAnalyses
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Size)
}
