package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/covenant-backend/internal/auth"
	"github.com/imadgeboyega/covenant-backend/internal/common/utils"
	"github.com/imadgeboyega/covenant-backend/internal/profile"
)

const handlerSecret = "discovery-secret"

func get(t *testing.T, router http.Handler, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		token, err := utils.GenerateJWT(utils.NewAccessClaims(userID, time.Hour), handlerSecret)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_GetFeed(t *testing.T) {
	env := newEnv(t, Config{})
	env.viewer(t, "alice")
	env.add(t, strong("carl"))
	env.add(t, weak("bob"))

	router := mux.NewRouter()
	RegisterRoutes(router, NewHandler(env.service), auth.NewMiddleware(handlerSecret))

	rr := get(t, router, "/api/v1/discovery?page=abc&pageSize=1", "alice")
	require.Equal(t, http.StatusOK, rr.Code)

	var page FeedPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Profiles, 1)
	assert.Equal(t, "carl", page.Profiles[0].Profile.ID)
	assert.Contains(t, rr.Body.String(), `"faithScore"`)
	assert.NotContains(t, rr.Body.String(), "blockedUsers")

	rr = get(t, router, "/api/v1/discovery?denominations=Catholic", "alice")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_GetFeedErrors(t *testing.T) {
	env := newEnv(t, Config{})
	env.viewer(t, "alice")

	router := mux.NewRouter()
	RegisterRoutes(router, NewHandler(env.service), auth.NewMiddleware(handlerSecret))

	assert.Equal(t, http.StatusUnauthorized, get(t, router, "/api/v1/discovery", "").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/discovery?minAge=12", "alice").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/discovery?minAge=old", "alice").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/discovery?minAge=40&maxAge=30", "alice").Code)
	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/v1/discovery", "ghost").Code)
}

func TestParseFeedQuery(t *testing.T) {
	q, err := ParseFeedQuery(url.Values{
		"page":          {"2"},
		"limit":         {"5"},
		"gender":        {"Man"},
		"denominations": {" Baptist, ,Methodist "},
		"values":        {"Purity"},
		"minTrustLevel": {"3"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.PageSize)
	require.NotNil(t, q.Overrides)
	assert.Equal(t, profile.GenderMan, *q.Overrides.Gender)
	assert.Equal(t, []string{"Baptist", "Methodist"}, q.Overrides.TargetDenominations)
	assert.Equal(t, []string{"Purity"}, q.Overrides.RequiredValues)
	assert.Equal(t, 3, *q.Overrides.MinTrustLevel)

	q, err = ParseFeedQuery(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, q.Overrides)

	_, err = ParseFeedQuery(url.Values{"gender": {"Other"}})
	assert.Error(t, err)
}

func TestHandler_ProfilesArePublic(t *testing.T) {
	env := newEnv(t, Config{})
	env.viewer(t, "alice")
	p := strong("carl")
	p.Email = "carl@example.com"
	env.add(t, p)
	require.NoError(t, env.store.AddToSet(context.Background(), "carl", profile.RelationBlocked, "zed"))

	router := mux.NewRouter()
	RegisterRoutes(router, NewHandler(env.service), auth.NewMiddleware(handlerSecret))

	rr := get(t, router, "/api/v1/discovery", "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "carl@example.com")
	assert.NotContains(t, rr.Body.String(), "zed")
}
