package wall

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ReinoScreech/roblox-wall-archive/models"
	"github.com/ReinoScreech/roblox-wall-archive/roblox"
)

// Result is what a full crawl of a group wall produces.
type Result struct {
	Records []models.Record
	Pages   int
	Outcome models.Outcome
}

// Paginator walks a group wall cursor by cursor, newest post first,
// formatting every post on the way. The API's descending order is kept
// as-is, nothing is re-sorted.
type Paginator struct {
	Client   *roblox.Client
	Resolver *roblox.RankResolver
	GroupID  int64
	Compact  bool

	// Cooldown is the pause between page fetches.
	Cooldown time.Duration
}

// FetchAll drives the crawl until the API stops returning a next page
// cursor. Permission failures, an exhausted rate limit budget, malformed
// timestamps and cancellation abort with an error and no result. An operator
// declining to continue past an unexpected status ends the crawl early with
// the records collected so far and an AbortedByOperator outcome, so the
// writer can mark the archive as incomplete instead of passing it off as the
// whole wall.
func (p *Paginator) FetchAll(ctx context.Context) (*Result, error) {
	result := &Result{Outcome: models.Complete}
	cursor := ""

	log.Info("Fetching group wall posts")

	for {
		page, err := p.Client.WallPosts(ctx, p.GroupID, cursor)
		if err != nil {
			if errors.Is(err, roblox.ErrAbortedByOperator) {
				log.Warn("Stopping early, the archive will be incomplete")
				result.Outcome = models.AbortedByOperator
				return result, nil
			}
			return nil, err
		}

		result.Pages++
		log.WithFields(log.Fields{
			"page":  result.Pages,
			"posts": len(page.Data),
		}).Info("Retrieved wall page")

		for _, post := range page.Data {
			record, err := p.processPost(ctx, post)
			if err != nil {
				return nil, err
			}
			result.Records = append(result.Records, record)
		}

		if page.NextPageCursor == nil || *page.NextPageCursor == "" {
			break
		}
		cursor = *page.NextPageCursor

		if err := sleep(ctx, p.Cooldown); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"pages": result.Pages,
		"posts": len(result.Records),
	}).Info("Finished fetching posts")

	return result, nil
}

func (p *Paginator) processPost(ctx context.Context, post roblox.WallPost) (models.Record, error) {
	displayName := "Unknown"
	var userID int64
	var roleName string

	if post.Poster == nil {
		// Very old walls carry posts with the poster stripped out. Fall back
		// to sentinels rather than losing the post.
		log.WithFields(log.Fields{"post": post.ID}).Warn("Poster info missing for post")
	} else {
		if post.Poster.User != nil {
			displayName = post.Poster.User.DisplayName
			userID = post.Poster.User.UserID
		}
		if post.Poster.Role != nil {
			roleName = post.Poster.Role.Name
		}
	}

	created, err := time.Parse(time.RFC3339, post.Created)
	if err != nil {
		// A record with an unparseable timestamp cannot be placed in the
		// archive honestly, so the whole fetch fails loudly.
		return models.Record{}, fmt.Errorf("post %d has a malformed created timestamp %q: %w", post.ID, post.Created, err)
	}

	if roleName == "" {
		roleName, err = p.Resolver.Resolve(ctx, userID)
		if err != nil {
			return models.Record{}, err
		}
	}

	return FormatRecord(models.Post{
		DisplayName: displayName,
		UserID:      userID,
		Body:        post.Body,
		Created:     created,
	}, roleName, p.Compact), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
