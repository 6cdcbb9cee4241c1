package game

import "github.com/atotto/clipboard"

// setClipboardText places text on the system clipboard.
func setClipboardText(text string) error {
	if text == "" {
		text = " "
	}
	return clipboard.WriteAll(text)
}
