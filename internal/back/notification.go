package back

import (
	"bytes"
	"encoding/json"
	"fmt"
	"touchline/internal/back/rating"
	"touchline/internal/util"

	"github.com/rs/zerolog/log"
)

type NotificationRecipientType int

const (
	NotificationRecipientTypeDiscordChannel NotificationRecipientType = 0
	NotificationRecipientTypeDiscordUser    NotificationRecipientType = 1
)

type NotificationType int

const (
	NotificationTypeMatchPlayed NotificationType = iota
	NotificationTypeFriendlyScheduled
)

// A Notification is a message the bot has to deliver on behalf of the Back.
type Notification struct {
	RecipientType NotificationRecipientType
	Recipient     string
	Type          NotificationType

	body bytes.Buffer
}

func (n *Notification) Printf(str string, args ...interface{}) (int, error) {
	return fmt.Fprintf(&n.body, str, args...)
}

func (n *Notification) Print(args ...interface{}) (int, error) {
	return fmt.Fprint(&n.body, args...)
}

func (n *Notification) Read(p []byte) (int, error) {
	return n.body.Read(p)
}

func NotificationTypeName(typ NotificationType) string {
	switch typ {
	case NotificationTypeMatchPlayed:
		return "MatchPlayed"
	case NotificationTypeFriendlyScheduled:
		return "FriendlyScheduled"
	default:
		return "invalid"
	}
}

func NotificationRecipientTypeName(typ NotificationRecipientType) string {
	switch typ {
	case NotificationRecipientTypeDiscordChannel:
		return "DiscordChannel"
	case NotificationRecipientTypeDiscordUser:
		return "DiscordUser"
	default:
		return "invalid"
	}
}

// For debugging purposes only.
func (n *Notification) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(
		&buf,
		"type %s, recipient type %s \"%s\"",
		NotificationTypeName(n.Type),
		NotificationRecipientTypeName(n.RecipientType),
		n.Recipient,
	)

	// HACK: Ensure its on one line (and safe to print)
	content, _ := json.Marshal(n.body.String())
	fmt.Fprintf(&buf, ", contents: %s", string(content))

	return buf.String()
}

// notify never blocks, a notification that does not fit in the buffer is
// logged and dropped.
func (b *Back) notify(notif *Notification) {
	select {
	case b.notifications <- *notif:
	default:
		log.Warn().Str("notification", notif.String()).Msg("notification buffer full, dropped")
	}
}

func (b *Back) sendMatchPlayedNotifications(result MatchResult) {
	line := func(n *Notification) {
		kind := "Match"
		if result.Match.IsFriendly {
			kind = "Friendly"
		}

		n.Printf(
			"%s #%d: **%s %d - %d %s**\n",
			kind, result.Match.ID,
			result.Home.Name, result.Match.HomeGoals,
			result.Match.AwayGoals, result.Away.Name,
		)
	}

	if channel := b.config.DiscordAnnounceChannelID; channel != "" {
		notif := Notification{
			RecipientType: NotificationRecipientTypeDiscordChannel,
			Recipient:     channel,
			Type:          NotificationTypeMatchPlayed,
		}
		line(&notif)
		b.notify(&notif)
	}

	send := func(manager string, club Club, delta float64, self rating.Result) {
		notif := Notification{
			RecipientType: NotificationRecipientTypeDiscordUser,
			Recipient:     manager,
			Type:          NotificationTypeMatchPlayed,
		}

		line(&notif)
		switch self {
		case rating.ResultHomeWin:
			notif.Print("**You won!** ")
		case rating.ResultDraw:
			notif.Print("**It's a draw.** ")
		case rating.ResultAwayWin:
			notif.Print("**You lost.** ")
		}
		notif.Printf("%s is now rated %s (%+.1f).", club.Name, util.Rating(club.Rating), delta)

		b.notify(&notif)
	}

	outcome := rating.Outcome(result.Match.HomeGoals, result.Match.AwayGoals)
	if result.HomeManager.Valid {
		send(result.HomeManager.String, result.Home, result.HomeDelta, outcome)
	}
	if result.AwayManager.Valid {
		send(result.AwayManager.String, result.Away, result.AwayDelta, -outcome)
	}
}

func (b *Back) sendFriendlyScheduledNotification(manager string, match MatchWithClubs) {
	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordUser,
		Recipient:     manager,
		Type:          NotificationTypeFriendlyScheduled,
	}

	notif.Printf(
		"%s challenged %s to a friendly, kick-off at %s (in %s).",
		match.HomeClubName, match.AwayClubName,
		util.Datetime(match.ScheduledAt),
		util.FormatDuration(match.ScheduledAt.Time().Sub(b.clock.Now())),
	)

	b.notify(&notif)
}
