package activities

import "time"

// Activity is a cognitive exercise or engagement item offered to clients.
type Activity struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Known activity kinds mirror the game catalog of the application.
const (
	KindSequenceMemory = "sequence_memory"
	KindWordPuzzle     = "word_puzzle"
	KindColorWord      = "color_word"
	KindFreeform       = "freeform"
)

// ValidKind reports whether the kind belongs to the catalog.
func ValidKind(kind string) bool {
	switch kind {
	case KindSequenceMemory, KindWordPuzzle, KindColorWord, KindFreeform:
		return true
	}
	return false
}
