package roblox

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/samber/lo"
)

// UnknownRank is the sentinel role for anonymous posters and failed lookups.
const UnknownRank = "Unknown"

// RankResolver resolves user ids to their role name within one group.
// Results are cached for the lifetime of the resolver. Rank lookups are
// best-effort enrichment, so any failure resolves to the Unknown sentinel and
// is cached as such rather than retried.
type RankResolver struct {
	client   *Client
	groupID  int64
	cooldown time.Duration
	cache    map[int64]string
}

// NewRankResolver builds a resolver around client for groupID. A nil cache
// starts empty; passing one in lets callers pre-seed or inspect it.
func NewRankResolver(client *Client, groupID int64, cooldown time.Duration, cache map[int64]string) *RankResolver {
	if cache == nil {
		cache = make(map[int64]string)
	}
	return &RankResolver{
		client:   client,
		groupID:  groupID,
		cooldown: cooldown,
		cache:    cache,
	}
}

// Resolve returns the role name for userID in the resolver's group. User id 0
// marks an anonymous poster and resolves without a network call. An error is
// only returned when the run is being cancelled.
func (r *RankResolver) Resolve(ctx context.Context, userID int64) (string, error) {
	if userID == 0 {
		return UnknownRank, nil
	}
	if name, ok := r.cache[userID]; ok {
		rankCacheHitsTotal.Inc()
		return name, nil
	}

	log.Infof("fetching rank for user %d", userID)
	rankLookupsTotal.Inc()

	name := UnknownRank
	var groups UserGroups
	resp, err := r.client.http.R().
		SetContext(ctx).
		SetResult(&groups).
		Get(fmt.Sprintf("/v2/users/%d/groups/roles", userID))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Errorf("rank lookup for user %d failed: %s", userID, err)
	} else if resp.StatusCode() == http.StatusOK {
		membership, found := lo.Find(groups.Data, func(m GroupMembership) bool {
			return m.Group.ID == r.groupID
		})
		if found {
			name = membership.Role.Name
		}
	} else {
		log.Errorf("rank lookup for user %d returned status %d", userID, resp.StatusCode())
	}

	r.cache[userID] = name

	// Cooldown after the round trip to stay under the API's rate limits.
	if err := sleep(ctx, r.cooldown); err != nil {
		return "", err
	}
	return name, nil
}
