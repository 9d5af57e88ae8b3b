package room

import "github.com/atotto/clipboard"

// CopyToClipboard puts a shareable identifier on the system clipboard.
func CopyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}
