package wall

import (
	"fmt"

	"github.com/ReinoScreech/roblox-wall-archive/models"
)

// FormatRecord renders one post into its archive record. The role name, date
// and time travel alongside the rendered text so downstream code never parses
// a record back apart.
//
// Post bodies are written verbatim. A body containing "|" or newlines will
// blur the field boundaries of the compact layout; that is a documented
// property of the format, not something to escape away.
func FormatRecord(post models.Post, roleName string, compact bool) models.Record {
	created := post.Created.UTC()
	date := created.Format("2006-01-02")
	clock := created.Format("15:04")

	var text string
	if compact {
		text = fmt.Sprintf("%s (%d): %s | %s | %s %s UTC",
			post.DisplayName, post.UserID, post.Body, roleName, date, clock)
	} else {
		text = fmt.Sprintf("%s (%d)\n%s\n\n%s | %s | %s UTC\n",
			post.DisplayName, post.UserID, post.Body, roleName, date, clock)
	}

	return models.Record{
		Text: text,
		Role: roleName,
		Date: date,
		Time: clock,
	}
}
