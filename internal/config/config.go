// Package config owns the user's settings and their JSON file on disk.
package config

import "encoding/json"

// DefaultChatPhaseMarker tags the chat conversation the game client uses
// during champion select. It comes from an uncontrolled third-party wire
// format, so it stays configurable rather than hard-coded in the filter.
const DefaultChatPhaseMarker = "champ-select"

// UserConfig is versionless, last-write-wins. Keys this build doesn't know
// about survive a load/save round-trip via extra.
type UserConfig struct {
	StatsProvider   string `json:"statsProvider"`
	RegionOverride  string `json:"regionOverride,omitempty"`
	ChatPhaseMarker string `json:"chatPhaseMarker"`

	extra map[string]json.RawMessage
}

func Default() UserConfig {
	return UserConfig{
		StatsProvider:   "op.gg",
		ChatPhaseMarker: DefaultChatPhaseMarker,
	}
}

func (c *UserConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	type plain UserConfig
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = UserConfig(p)
	delete(raw, "statsProvider")
	delete(raw, "regionOverride")
	delete(raw, "chatPhaseMarker")
	if len(raw) > 0 {
		c.extra = raw
	}
	return nil
}

func (c UserConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.extra)+3)
	for k, v := range c.extra {
		out[k] = v
	}
	type plain UserConfig
	known, err := json.Marshal(plain(c))
	if err != nil {
		return nil, err
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, err
	}
	for k, v := range knownMap {
		out[k] = v
	}
	return json.Marshal(out)
}
