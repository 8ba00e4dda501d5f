package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Ticket is the metadata of a support request. The ticket itself lives on the platform as a channel.
type Ticket struct {
	Number           int64
	Category         Category
	RequesterID      string
	RequesterTag     string
	RequesterName    string
	Issue            string
	ExternalUsername string
	ChannelID        string
	ChannelName      string
	CreatedAt        time.Time
}

// TicketClosure describes a completed close transition.
type TicketClosure struct {
	ChannelID   string
	RequesterID string
	ClosedByID  string
	ClosedByTag string
	ClosedAt    time.Time
}

const (
	topicRequesterKey    = "requester:"
	channelTokenMaxLen   = 20
	channelTokenFallback = "user"
	channelNamePrefix    = "ticket-"
)

var disallowedChars = regexp.MustCompile(`[^a-z0-9\-_]`)

// SanitizeChannelToken turns a display name into a token matching ^[a-z0-9-_]{1,20}$.
func SanitizeChannelToken(name string) string {
	token := strings.Join(strings.Fields(strings.ToLower(name)), "-")
	token = disallowedChars.ReplaceAllString(token, "")
	if len(token) > channelTokenMaxLen {
		token = token[:channelTokenMaxLen]
	}
	if token == "" {
		return channelTokenFallback
	}
	return token
}

// TicketChannelName builds ticket-<sanitized>-<number>.
func TicketChannelName(displayName string, number int64) string {
	return channelNamePrefix + SanitizeChannelToken(displayName) + "-" + strconv.FormatInt(number, 10)
}

// TicketTopic is the channel topic of a new ticket. It ends with the requester id so
// the close flow can find the requester without relying on overwrite order.
func TicketTopic(t *Ticket) string {
	return fmt.Sprintf("Ticket #%d · %s · opened by %s · %s%s",
		t.Number, t.Category.Label, t.RequesterTag, topicRequesterKey, t.RequesterID)
}

// RequesterFromTopic reads the requester id written by TicketTopic.
func RequesterFromTopic(topic string) (string, bool) {
	i := strings.LastIndex(topic, topicRequesterKey)
	if i < 0 {
		return "", false
	}
	fields := strings.Fields(topic[i+len(topicRequesterKey):])
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}
