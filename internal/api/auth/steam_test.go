package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteamIDFromClaimedID(t *testing.T) {
	id, err := steamIDFromClaimedID("https://steamcommunity.com/openid/id/76561197970839256")
	require.NoError(t, err)
	assert.Equal(t, int64(76561197970839256), id)

	_, err = steamIDFromClaimedID("https://steamcommunity.com/openid/id/not-a-number")
	assert.Error(t, err)

	_, err = steamIDFromClaimedID("")
	assert.Error(t, err)

	_, err = steamIDFromClaimedID("https://steamcommunity.com/openid/id/")
	assert.Error(t, err)
}

func TestCheckAuthentication(t *testing.T) {
	var sawMode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		sawMode = r.PostForm.Get("openid.mode")
		if r.PostForm.Get("openid.sig") == "good" {
			fmt.Fprint(w, "ns:http://specs.openid.net/auth/2.0\nis_valid:true\n")
			return
		}
		fmt.Fprint(w, "ns:http://specs.openid.net/auth/2.0\nis_valid:false\n")
	}))
	defer server.Close()

	h := &Handler{endpoint: server.URL, client: server.Client()}

	assertion := url.Values{
		"openid.mode": {"id_res"},
		"openid.sig":  {"good"},
		// Non-openid params must not be replayed.
		"other": {"dropped"},
	}
	valid, err := h.checkAuthentication(assertion)
	require.NoError(t, err)
	assert.True(t, valid)
	// The replay swaps the mode per the verification handshake.
	assert.Equal(t, "check_authentication", sawMode)

	assertion.Set("openid.sig", "forged")
	valid, err = h.checkAuthentication(assertion)
	require.NoError(t, err)
	assert.False(t, valid)
}
