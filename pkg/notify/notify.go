// Package notify delivers user-facing feedback. Delivery is fire-and-forget:
// nothing a Notifier does is reported back to the caller.
package notify

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

type Kind string

const (
	Success Kind = "success"
	Warning Kind = "warning"
	Error   Kind = "error"
)

type Notifier interface {
	Notify(kind Kind, title, message string)
}

// Message is the wire form used by WebhookNotifier.
type Message struct {
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// LogNotifier writes notifications to a logrus logger.
type LogNotifier struct {
	Log *logrus.Logger
}

func (n LogNotifier) Notify(kind Kind, title, message string) {
	if n.Log == nil {
		return
	}
	entry := n.Log.WithField("title", title)
	switch kind {
	case Error:
		entry.Error(message)
	case Warning:
		entry.Warn(message)
	default:
		entry.Info(message)
	}
}

// WebhookNotifier POSTs each notification as JSON from its own goroutine.
type WebhookNotifier struct {
	url    string
	client *retryablehttp.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = 2
	client.HTTPClient.Timeout = 10 * time.Second
	return &WebhookNotifier{url: url, client: client}
}

func (n *WebhookNotifier) Notify(kind Kind, title, message string) {
	body, err := json.Marshal(Message{Kind: kind, Title: title, Message: message, SentAt: time.Now().UTC()})
	if err != nil {
		return
	}
	go func() {
		resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
		if err != nil {
			return
		}
		resp.Body.Close()
	}()
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(kind Kind, title, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(kind, title, message)
		}
	}
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Kind, string, string) {}
