package api

import (
	"context"
	"net/http"

	"github.com/spf13/cast"

	"github.com/MrJorjinio/simpchat-client/internal/model"
)

// FetchPresence queries presence for the given user ids.
//
// The endpoint's response shape has been observed to vary: older deployments
// return {"u1": true}, newer ones {"u1": {"isOnline": true, "lastSeen": n}}.
// Both are normalized here, once, into model.PresenceEntry.
func (c *Client) FetchPresence(ctx context.Context, userIDs []string) (map[string]model.PresenceEntry, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodPost, "/api/presence", map[string]any{"userIds": userIDs}, &raw); err != nil {
		return nil, err
	}
	return NormalizePresence(raw), nil
}

// NormalizePresence converts either presence response shape into the
// canonical entry map.
func NormalizePresence(raw map[string]any) map[string]model.PresenceEntry {
	out := make(map[string]model.PresenceEntry, len(raw))
	for userID, v := range raw {
		switch val := v.(type) {
		case bool:
			out[userID] = model.PresenceEntry{Online: val}
		case map[string]any:
			entry := model.PresenceEntry{
				Online:   cast.ToBool(val["isOnline"]),
				LastSeen: cast.ToInt64(val["lastSeen"]),
			}
			if entry.Online {
				// LastSeen only ever describes an offline user.
				entry.LastSeen = 0
			}
			out[userID] = entry
		default:
			// Unknown shape for this user; treat as offline with no history.
			out[userID] = model.PresenceEntry{}
		}
	}
	return out
}
