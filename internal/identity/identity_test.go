package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestFromToken(t *testing.T) {
	id := uuid.New()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":             id.String(),
		"email":           "ada@example.com",
		"email_confirmed": true,
		"name":            "Ada",
	})

	p, err := FromToken(token)
	if err != nil {
		t.Fatalf("FromToken: %v", err)
	}
	if p.ID != id || p.Email != "ada@example.com" || !p.EmailConfirmed || p.Name != "Ada" {
		t.Fatalf("principal = %+v", p)
	}
}

func TestFromTokenErrors(t *testing.T) {
	cases := map[string]*jwt.Token{
		"nil token":    nil,
		"missing sub":  jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "x"}),
		"bad uuid":     jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "not-a-uuid"}),
		"typed claims": jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{Subject: uuid.NewString()}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := FromToken(token); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSessionHub(t *testing.T) {
	hub := NewSessionHub()
	champion := uuid.New()

	var events []SessionEvent
	unsubscribe := hub.OnSessionChange(func(ev SessionEvent) { events = append(events, ev) })

	hub.Touch(champion)
	hub.Touch(champion)
	hub.SignOut(champion)
	hub.Touch(champion)

	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	want := []SessionEventType{SignedIn, SignedOut, SignedIn}
	for i, ev := range events {
		if ev.Type != want[i] || ev.ChampionID != champion {
			t.Fatalf("event %d = %+v, want %s", i, ev, want[i])
		}
	}

	unsubscribe()
	hub.SignOut(champion)
	if len(events) != 3 {
		t.Fatal("unsubscribed callback still called")
	}
}

func TestSessionHubEndsIdleSessions(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	hub := newSessionHub(time.Hour, func() time.Time { return now })
	idle, busy := uuid.New(), uuid.New()

	var signedOut []uuid.UUID
	hub.OnSessionChange(func(ev SessionEvent) {
		if ev.Type == SignedOut {
			signedOut = append(signedOut, ev.ChampionID)
		}
	})

	hub.Touch(idle)
	hub.Touch(busy)

	now = now.Add(30 * time.Minute)
	hub.Touch(busy)
	if len(signedOut) != 0 {
		t.Fatalf("signed out before timeout: %v", signedOut)
	}

	now = now.Add(45 * time.Minute)
	hub.Touch(busy)
	if len(signedOut) != 1 || signedOut[0] != idle {
		t.Fatalf("signed out = %v, want only %s", signedOut, idle)
	}
	if _, tracked := hub.active[idle]; tracked {
		t.Fatal("idle session still tracked")
	}
	if len(hub.active) != 1 {
		t.Fatalf("tracked sessions = %d, want 1", len(hub.active))
	}
}
