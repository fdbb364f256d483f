package bot

import (
	"fmt"
	"io"
	"touchline/internal/back"
)

func (bot *Bot) sendNotification(notif back.Notification) error {
	switch notif.Type {
	case back.NotificationTypeMatchPlayed, back.NotificationTypeFriendlyScheduled:
	default:
		return fmt.Errorf("got unknown notification type: %d", notif.Type)
	}

	w, err := bot.getWriterForNotification(notif)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, &notif); err != nil {
		return err
	}

	return w.Flush()
}

func (bot *Bot) getWriterForNotification(notif back.Notification) (*channelWriter, error) {
	switch notif.RecipientType {
	case back.NotificationRecipientTypeDiscordUser:
		return newUserChannelWriter(bot.dg, notif.Recipient)
	case back.NotificationRecipientTypeDiscordChannel:
		return newChannelWriter(bot.dg, notif.Recipient), nil
	default:
		return nil, fmt.Errorf("cannot handle recipient type: %d", notif.RecipientType)
	}
}
