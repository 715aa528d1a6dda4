// Package notify pushes scrape results to a Discord webhook. Notifications
// are best effort: the caller logs failures and moves on.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ashiven/cs2tracker/pricelog"
)

const (
	username  = "CS2Tracker"
	avatarURL = "https://raw.githubusercontent.com/ashiven/cs2tracker/main/assets/logo.png"
	// recentRows bounds the history excerpt; Discord truncates long fields.
	recentRows = 5
	// maxSourceFields keeps the embed at three columns: the date column plus
	// two market sources.
	maxSourceFields = 2

	embedColor = 0x5865F2
)

// Notifier posts an inventory value summary to one Discord webhook.
type Notifier struct {
	WebhookURL string
	HTTP       *http.Client
	Log        *pricelog.Log
}

// NewDiscord returns a notifier reporting the given price log.
func NewDiscord(webhookURL string, log *pricelog.Log) *Notifier {
	return &Notifier{
		WebhookURL: webhookURL,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		Log:        log,
	}
}

type field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title  string  `json:"title"`
	Color  int     `json:"color"`
	Fields []field `json:"fields"`
}

type message struct {
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Embeds    []embed `json:"embeds"`
}

// Notify reads the most recent log rows and posts them as one embed: a date
// column next to the converted totals of the first two market sources.
func (n *Notifier) Notify() error {
	if n.WebhookURL == "" {
		return fmt.Errorf("no discord webhook URL configured")
	}

	history, err := n.Log.Read(true)
	if err != nil {
		return err
	}
	if history.Len() == 0 {
		return fmt.Errorf("price log is empty, nothing to report")
	}

	rows := history.Len()
	if rows > recentRows {
		rows = recentRows
	}

	dates := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		dates = append(dates, history.Dates[i].String())
	}
	fields := []field{{Name: "Date", Value: strings.Join(dates, "\n"), Inline: true}}

	sources := n.Log.Sources
	if len(sources) > maxSourceFields {
		sources = sources[:maxSourceFields]
	}
	for _, source := range sources {
		amounts := make([]string, 0, rows)
		for i := 0; i < rows; i++ {
			amounts = append(amounts, history.Amount(source, i))
		}
		fields = append(fields, field{Name: source.Title(), Value: strings.Join(amounts, "\n"), Inline: true})
	}

	body, err := json.Marshal(message{
		Username:  username,
		AvatarURL: avatarURL,
		Embeds: []embed{{
			Title:  "Inventory Value",
			Color:  embedColor,
			Fields: fields,
		}},
	})
	if err != nil {
		return err
	}

	resp, err := n.HTTP.Post(n.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cannot reach discord webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook rejected the notification: status %d", resp.StatusCode)
	}
	return nil
}
