package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type recorder struct{ got []Message }

func (r *recorder) Notify(kind Kind, title, message string) {
	r.got = append(r.got, Message{Kind: kind, Title: title, Message: message})
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, nil, b}.Notify(Warning, "Heads up", "sign in first")
	if len(a.got) != 1 || len(b.got) != 1 || b.got[0].Kind != Warning {
		t.Fatalf("unexpected fan out: %+v %+v", a.got, b.got)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	LogNotifier{Log: l}.Notify(Error, "Fetch failed", "upstream down")
	out := buf.String()
	if !strings.Contains(out, "level=error") || !strings.Contains(out, "upstream down") || !strings.Contains(out, `title="Fetch failed"`) {
		t.Fatalf("unexpected log output: %s", out)
	}

	LogNotifier{}.Notify(Error, "ignored", "nil logger is a no-op")
}

func TestWebhookNotifier(t *testing.T) {
	got := make(chan Message, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m Message
		_ = json.NewDecoder(r.Body).Decode(&m)
		got <- m
	}))
	defer srv.Close()

	NewWebhookNotifier(srv.URL).Notify(Success, "Added", "1 ticket added to cart")

	select {
	case m := <-got:
		if m.Kind != Success || m.Title != "Added" || m.Message != "1 ticket added to cart" {
			t.Fatalf("unexpected message: %+v", m)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not called")
	}
}
