package model

// Item is one shopping-list entry.
// ID and CreatedAt are fixed at creation; Text and Completed change in place.
type Item struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
}

// TimeLayout is the ISO-8601 form used for CreatedAt (always UTC, millisecond precision).
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Clone returns a copy of items that never aliases the input and is never nil,
// so an empty list still encodes as [].
func Clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// IndexOf returns the position of the item with the given id, or -1.
func IndexOf(items []Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Stats counts completed and pending items.
func Stats(items []Item) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
