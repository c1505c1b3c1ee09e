package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/confops/conference-api/internal/models"
)

type DiscordAnnouncer struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordAnnouncer(botToken, channelID string) (*DiscordAnnouncer, error) {
	if botToken == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord channel ID is empty")
	}

	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, err
	}

	return &DiscordAnnouncer{
		session:   session,
		channelID: channelID,
	}, nil
}

func (a *DiscordAnnouncer) AnnounceSession(action string, session models.Session) error {
	if a.session == nil {
		return fmt.Errorf("discord session is nil")
	}

	message := fmt.Sprintf("📅 **Schedule Update**\n**Session:** %s\n**Speaker:** %s\n**Venue:** %s\n**Time:** %s\n**Capacity:** %d\n**Change:** %s",
		session.Title,
		session.Speaker,
		session.Venue,
		session.StartsAt.Format("2006-01-02 15:04"),
		session.Capacity,
		action,
	)

	_, err := a.session.ChannelMessageSend(a.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
