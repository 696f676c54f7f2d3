package lobby

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lcu-tools/dodgewatch/internal/lcu"
)

const regionLocalePath = "/riotclient/region-locale"

// RegionInfo is the game client's region/locale payload. Only WebRegion is
// load-bearing here; the rest rides along for the client-info endpoint.
type RegionInfo struct {
	Locale      string `json:"locale"`
	Region      string `json:"region"`
	WebLanguage string `json:"webLanguage"`
	WebRegion   string `json:"webRegion"`
}

func FetchRegion(ctx context.Context, client lcu.Client) (RegionInfo, error) {
	raw, err := client.Request(ctx, http.MethodGet, regionLocalePath, nil)
	if err != nil {
		return RegionInfo{}, err
	}
	var info RegionInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return RegionInfo{}, fmt.Errorf("%w: region locale: %v", lcu.ErrParse, err)
	}
	return info, nil
}

// ShortRegion maps the web region to the code stats sites use. "SG2" is the
// one known mismatch; everything else passes through unchanged.
func ShortRegion(webRegion string) string {
	if webRegion == "SG2" {
		return "SG"
	}
	return webRegion
}

// StatsLink derives the multi-search URL for the lobby on the configured
// provider. Unknown providers fall back to op.gg.
func StatsLink(l Lobby, region, provider string) string {
	names := make([]string, 0, len(l.Participants))
	for _, p := range l.Participants {
		names = append(names, p.GameName+"#"+p.GameTag)
	}
	joined := strings.Join(names, ",")
	lower := strings.ToLower(region)

	switch provider {
	case "u.gg":
		return (&url.URL{
			Scheme:   "https",
			Host:     "u.gg",
			Path:     "/multisearch",
			RawQuery: url.Values{"summoners": {joined}, "region": {lower}}.Encode(),
		}).String()
	default:
		return (&url.URL{
			Scheme:   "https",
			Host:     "www.op.gg",
			Path:     "/multisearch/" + lower,
			RawQuery: url.Values{"summoners": {joined}}.Encode(),
		}).String()
	}
}
