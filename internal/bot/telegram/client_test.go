package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestSenderName(t *testing.T) {
	cases := []struct {
		name string
		user *tgbotapi.User
		want string
	}{
		{"nil user", nil, ""},
		{"first name preferred", &tgbotapi.User{FirstName: "Budi", UserName: "budi88"}, "Budi"},
		{"username fallback", &tgbotapi.User{UserName: "budi88"}, "budi88"},
		{"nothing set", &tgbotapi.User{}, ""},
	}
	for _, c := range cases {
		if got := senderName(c.user); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}
