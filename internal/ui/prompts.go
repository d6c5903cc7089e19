package ui

import "fmt"

// DeletePrompt is asked before removing a single item.
const DeletePrompt = "Delete this item from your list?"

// ClearCompletedPrompt is asked before clearing n completed items.
func ClearCompletedPrompt(n int) string {
	if n == 1 {
		return "Clear 1 completed item?"
	}
	return fmt.Sprintf("Clear %d completed items?", n)
}

// ClearAllPrompt is asked before emptying a list of n items.
func ClearAllPrompt(n int) string {
	if n == 1 {
		return "Remove the only item on the list?"
	}
	return fmt.Sprintf("Remove all %d items?", n)
}
