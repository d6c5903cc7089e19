// Package share renders the list as a plain-text message that still carries
// the raw JSON, so the recipient can read it and import it.
package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/idilsaglam/shoplist/internal/model"
)

// DefaultTitle heads every message unless configured otherwise.
const DefaultTitle = "Simple List"

var ErrNothingToShare = errors.New("no items to share")

// Text renders items as a checklist followed by the compact JSON collection.
func Text(title string, items []model.Item) (string, error) {
	if len(items) == 0 {
		return "", ErrNothingToShare
	}
	if title == "" {
		title = DefaultTitle
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", title)
	for _, it := range items {
		box := "[ ]"
		if it.Completed {
			box = "[x]"
		}
		fmt.Fprintf(&b, "%s %s\n", box, it.Text)
	}
	fmt.Fprintf(&b, "\n---\nJSON: %s", raw)
	return b.String(), nil
}

// WhatsAppURL is a wa.me link that opens a chat pre-filled with text.
func WhatsAppURL(text string) string {
	return "https://wa.me/?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// ExtractJSON pulls the JSON payload back out of a shared message,
// ready to hand to the store's Import.
func ExtractJSON(message string) ([]byte, bool) {
	const marker = "\n---\nJSON: "
	i := strings.LastIndex(message, marker)
	if i < 0 {
		return nil, false
	}
	return []byte(strings.TrimSpace(message[i+len(marker):])), true
}
