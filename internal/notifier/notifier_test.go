package notifier

import (
	"testing"

	"github.com/confops/conference-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestWelcomeBody(t *testing.T) {
	participant := models.Participant{
		Name:          "Ann",
		Email:         "ann@example.com",
		IdentityToken: "token-1234",
	}

	body := WelcomeBody(participant)

	assert.Contains(t, body, "Ann")
	assert.Contains(t, body, "token-1234")
	assert.NotContains(t, body, "ann@example.com", "the mail goes to the address, no need to echo it")
}

func TestNewDiscordAnnouncer_RequiresConfig(t *testing.T) {
	_, err := NewDiscordAnnouncer("", "channel")
	assert.Error(t, err)

	_, err = NewDiscordAnnouncer("bot-token", "")
	assert.Error(t, err)
}

func TestDiscordAnnouncer_NilSession(t *testing.T) {
	announcer := &DiscordAnnouncer{}
	err := announcer.AnnounceSession("updated", models.Session{})
	assert.Error(t, err)
}
