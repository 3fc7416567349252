package bot

import (
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// collectURLs gathers URLs from a message's entities and, when the message is
// a reply, from the replied-to message's entities as well.
func collectURLs(msg *tgbotapi.Message) []string {
	urls := entityURLs(msg.Text, msg.Entities)
	if msg.ReplyToMessage != nil {
		urls = append(urls, entityURLs(msg.ReplyToMessage.Text, msg.ReplyToMessage.Entities)...)
	}
	return urls
}

// entityURLs extracts url and text_link entities. Telegram entity offsets are
// in UTF-16 code units, so the text is re-encoded before slicing.
func entityURLs(text string, entities []tgbotapi.MessageEntity) []string {
	var urls []string
	var encoded []uint16
	for _, e := range entities {
		switch {
		case e.IsURL():
			if encoded == nil {
				encoded = utf16.Encode([]rune(text))
			}
			if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > len(encoded) {
				continue
			}
			urls = append(urls, string(utf16.Decode(encoded[e.Offset:e.Offset+e.Length])))
		case e.IsTextLink():
			if e.URL != "" {
				urls = append(urls, e.URL)
			}
		}
	}
	return urls
}
