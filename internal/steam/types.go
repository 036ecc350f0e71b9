package steam

// Wire shapes for the Steam Web API and storefront endpoints. Only the
// fields we read are declared.

// AppListEntry is one app from IStoreService/GetAppList.
type AppListEntry struct {
	AppID int64  `json:"appid"`
	Name  string `json:"name"`
}

type appListWrapper struct {
	Response appListResponse `json:"response"`
}

type appListResponse struct {
	Apps            []AppListEntry `json:"apps"`
	HaveMoreResults bool           `json:"have_more_results"`
	LastAppID       int64          `json:"last_appid"`
}

// appDetailsEntry is the storefront appdetails payload, keyed by app
// ID in the enclosing object. success can be true with the app absent
// from data on delisted titles.
type appDetailsEntry struct {
	Success bool            `json:"success"`
	Data    *appDetailsData `json:"data"`
}

type appDetailsData struct {
	Name        string          `json:"name"`
	Platforms   map[string]bool `json:"platforms"`
	ReleaseDate releaseDate     `json:"release_date"`
}

// releaseDate carries a loosely formatted human date string; it is
// empty for a handful of otherwise-valid titles.
type releaseDate struct {
	Date string `json:"date"`
}

type ownedGamesWrapper struct {
	Response ownedGamesResponse `json:"response"`
}

type ownedGamesResponse struct {
	GameCount int `json:"game_count"`
	Games     []struct {
		AppID int64 `json:"appid"`
	} `json:"games"`
}

type playerSummariesWrapper struct {
	Response playerSummariesResponse `json:"response"`
}

type playerSummariesResponse struct {
	Players []playerSummary `json:"players"`
}

// playerSummary is one profile from ISteamUser/GetPlayerSummaries.
// Steam serializes the 64-bit ID as a string.
type playerSummary struct {
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
	AvatarHash  string `json:"avatarhash"`
}
