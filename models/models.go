package models

import "time"

// Post holds the fields extracted from one wall post payload.
type Post struct {
	DisplayName string
	UserID      int64
	Body        string
	Created     time.Time
}

// Record is one formatted wall post. Text is the rendered record as it is
// written to the archive; Role, Date and Time are carried alongside so that
// writers never have to parse the rendered text back apart.
type Record struct {
	Text string
	Role string
	Date string
	Time string
}

// Outcome distinguishes a crawl that ran to the end of the wall from one the
// operator cut short after an unexpected API error.
type Outcome int

const (
	Complete Outcome = iota
	AbortedByOperator
)

func (o Outcome) String() string {
	switch o {
	case Complete:
		return "complete"
	case AbortedByOperator:
		return "aborted by operator"
	default:
		return "unknown"
	}
}
