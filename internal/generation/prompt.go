package generation

import (
	"fmt"

	"threadcraft-api/internal/domain/content"
)

// BuildPrompt renders the model instruction for a content type.
func BuildPrompt(ct content.ContentType, prompt string, withImage bool) string {
	text := fmt.Sprintf("Generate %s content about \"%s\".", ct, prompt)
	if ct == content.Twitter {
		text += " Provide a thread of 5 tweets, each under 280 characters."
	}
	if ct == content.Instagram && withImage {
		text += " Describe the image and incorporate it into the caption."
	}
	return text
}
