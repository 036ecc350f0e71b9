package steam

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(server *httptest.Server) *Client {
	c := NewClient("test-key", "", zap.NewNop())
	c.apiBase = server.URL
	c.storeBase = server.URL
	c.http = server.Client()
	return c
}

func TestGetNewApps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IStoreService/GetAppList/v1/", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"response":{"apps":[
			{"appid":500,"name":"Left 4 Dead"},
			{"appid":550,"name":"Left 4 Dead 2"},
			{"appid":620,"name":"Portal 2"}
		],"have_more_results":false,"last_appid":620}}`)
	}))
	defer server.Close()

	apps, err := testClient(server).GetNewApps(400, 10)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, int64(500), apps[0].AppID)
	assert.Equal(t, "Left 4 Dead", apps[0].Name)
	assert.Equal(t, int64(620), apps[2].AppID)
}

func TestGetNewAppsHonorsCursorAndLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"apps":[
			{"appid":500,"name":"old"},
			{"appid":550,"name":"new a"},
			{"appid":620,"name":"new b"}
		],"have_more_results":false,"last_appid":620}}`)
	}))
	defer server.Close()

	// 500 is at or below the cursor and must not come back.
	apps, err := testClient(server).GetNewApps(500, 1)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, int64(550), apps[0].AppID)
}

func TestGetNewAppsStuckCursorTerminates(t *testing.T) {
	// Upstream claims more results but never advances last_appid; the
	// pager must bail out instead of looping on the same page.
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"response":{"apps":[
			{"appid":550,"name":"repeat"}
		],"have_more_results":true,"last_appid":550}}`)
	}))
	defer server.Close()

	apps, err := testClient(server).GetNewApps(500, 10)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, int64(550), apps[0].AppID)
	assert.Equal(t, 2, calls)
}

func TestGetAppDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/appdetails", r.URL.Path)
		assert.Equal(t, "220", r.URL.Query().Get("appids"))
		fmt.Fprint(w, `{"220":{"success":true,"data":{
			"name":"Half-Life 2",
			"platforms":{"windows":true,"mac":true,"linux":true},
			"release_date":{"coming_soon":false,"date":"Nov 16, 2004"}
		}}}`)
	}))
	defer server.Close()

	detail, err := testClient(server).GetAppDetails(220)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "Half-Life 2", detail.Title)
	assert.True(t, detail.Platforms["mac"])
	require.NotNil(t, detail.ReleaseDate)
	assert.Equal(t, time.Date(2004, time.November, 16, 0, 0, 0, 0, time.UTC), *detail.ReleaseDate)
}

func TestGetAppDetailsAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"1234":{"success":false}}`)
	}))
	defer server.Close()

	detail, err := testClient(server).GetAppDetails(1234)
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestGetAppDetailsToleratesBadReleaseDate(t *testing.T) {
	for _, date := range []string{"", "Coming soon", "2004"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"220":{"success":true,"data":{
				"name":"Half-Life 2",
				"platforms":{"mac":true},
				"release_date":{"date":%q}
			}}}`, date)
		}))

		detail, err := testClient(server).GetAppDetails(220)
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Nil(t, detail.ReleaseDate)
		server.Close()
	}
}

func TestCatalinaCompatible(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app/100":
			fmt.Fprint(w, `<html><body>Requires a 64-bit processor (1055-ISJM-8568)</body></html>`)
		case "/app/200":
			fmt.Fprint(w, `<html><body>A perfectly fine store page</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := testClient(server)

	compatible, err := client.CatalinaCompatible(100)
	require.NoError(t, err)
	assert.False(t, compatible)

	compatible, err = client.CatalinaCompatible(200)
	require.NoError(t, err)
	assert.True(t, compatible)
}

func TestOwnedGames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IPlayerService/GetOwnedGames/v1/", r.URL.Path)
		fmt.Fprint(w, `{"response":{"game_count":2,"games":[
			{"appid":220,"playtime_forever":120},
			{"appid":440,"playtime_forever":9000}
		]}}`)
	}))
	defer server.Close()

	ids, err := testClient(server).OwnedGames(76561197970000000)
	require.NoError(t, err)
	assert.Equal(t, []int64{220, 440}, ids)
}

func TestOwnedGamesEmptyResponse(t *testing.T) {
	// Private profiles answer with an empty response object.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{}}`)
	}))
	defer server.Close()

	ids, err := testClient(server).OwnedGames(76561197970000000)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPlayerSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ISteamUser/GetPlayerSummaries/v2/", r.URL.Path)
		fmt.Fprint(w, `{"response":{"players":[
			{"steamid":"76561197970000000","personaname":"gordon","avatarhash":"fef49e7fa7e1997310d705b2a6158ff8dc1cdfeb"}
		]}}`)
	}))
	defer server.Close()

	summary, err := testClient(server).PlayerSummary(76561197970000000)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, int64(76561197970000000), summary.SteamID)
	assert.Equal(t, "gordon", summary.Nickname)
	assert.Equal(t, "fef49e7fa7e1997310d705b2a6158ff8dc1cdfeb", summary.AvatarHash)
}

func TestPlayerSummaryUnknownUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"players":[]}}`)
	}))
	defer server.Close()

	summary, err := testClient(server).PlayerSummary(1)
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestErrorStatusRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server).OwnedGames(1)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "test-key")
	assert.Contains(t, err.Error(), "429")
}
