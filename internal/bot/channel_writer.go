package bot

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// maxMessageLength is the Discord limit for a single message content.
const maxMessageLength = 2000

const codeFence = "```"

// channelWriter buffers a reply and sends it to a Discord channel (or a
// private channel) on Flush, split in as many messages as needed.
// A nil *channelWriter discards everything.
type channelWriter struct {
	dg        *discordgo.Session
	channelID string
	buf       bytes.Buffer

	recipient string // for logs
}

func newUserChannelWriter(dg *discordgo.Session, userID string) (*channelWriter, error) {
	if userID == "" {
		log.Warn().Msg("no Discord user ID, reply discarded")
		return nil, nil
	}

	channel, err := dg.UserChannelCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("unable to create user channel: %w", err)
	}

	w := newChannelWriter(dg, channel.ID)
	w.recipient = "user " + userID

	return w, nil
}

func newChannelWriter(dg *discordgo.Session, channelID string) *channelWriter {
	if channelID == "" {
		log.Warn().Msg("no Discord channel ID, reply discarded")
		return nil
	}

	return &channelWriter{
		dg:        dg,
		channelID: channelID,
		recipient: "channel " + channelID,
	}
}

func (w *channelWriter) Write(p []byte) (int, error) {
	if w == nil {
		return len(p), nil
	}

	return w.buf.Write(p)
}

// Reset drops what was written since the last Flush.
func (w *channelWriter) Reset() {
	if w != nil {
		w.buf.Reset()
	}
}

// Flush sends the buffered reply, the writer is empty afterwards even if
// sending failed.
func (w *channelWriter) Flush() error {
	if w == nil || w.buf.Len() == 0 {
		return nil
	}

	content := w.buf.String()
	w.buf.Reset()

	for _, msg := range splitMessage(content, maxMessageLength) {
		if _, err := w.dg.ChannelMessageSend(w.channelID, msg); err != nil {
			return fmt.Errorf("unable to send message to %s: %w", w.recipient, err)
		}
		log.Debug().Str("to", w.recipient).Str("content", msg).Msg("message sent")
	}

	return nil
}

// splitMessage cuts content in parts of at most max runes, on line ends when
// possible. A code block spanning two parts is closed at the end of the first
// one and reopened at the start of the next.
func splitMessage(content string, max int) []string {
	// Room to close a code block: "\n```".
	reserve := len(codeFence) + 1

	var parts []string
	for utf8.RuneCountInString(content) > max {
		runes := []rune(content)
		cut := max - reserve
		head := string(runes[:cut])

		if i := strings.LastIndexByte(head, '\n'); i >= cut/2 {
			head = head[:i+1]
		}
		content = content[len(head):]

		if strings.Count(head, codeFence)%2 == 1 {
			if !strings.HasSuffix(head, "\n") {
				head += "\n"
			}
			head += codeFence
			content = codeFence + "\n" + content
		}

		parts = append(parts, head)
	}

	return append(parts, content)
}
