package roblox

import (
	"fmt"

	"github.com/cqroot/prompt"
)

// ContinuePolicy decides whether a fetch that hit an unexpected API status
// should be retried or abandoned. Keeping this behind an interface keeps the
// fetch loop usable non-interactively and testable without stdin.
type ContinuePolicy interface {
	Continue(status int) bool
}

// AutoContinue retries unconditionally.
type AutoContinue struct{}

func (AutoContinue) Continue(int) bool { return true }

// AutoAbort gives up on the first unexpected status.
type AutoAbort struct{}

func (AutoAbort) Continue(int) bool { return false }

// PromptPolicy asks the operator on the terminal.
type PromptPolicy struct{}

func (PromptPolicy) Continue(status int) bool {
	answer, err := prompt.New().
		Ask(fmt.Sprintf("The API returned an unexpected error (%d). Continue anyway?", status)).
		Choose([]string{"yes", "no"})
	if err != nil {
		return false
	}
	return answer == "yes"
}
