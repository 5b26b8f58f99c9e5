package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"github.com/foxhole-tools/shiptracker/internal/config"
	"github.com/foxhole-tools/shiptracker/internal/middleware"
	"github.com/foxhole-tools/shiptracker/internal/repositories"
	"github.com/foxhole-tools/shiptracker/internal/services"
	"github.com/foxhole-tools/shiptracker/pkg/locks"
	"github.com/foxhole-tools/shiptracker/pkg/logger"
)

// Bot wires the gateway session to the service layer. One instance per
// process; handlers run on discordgo's event goroutines.
type Bot struct {
	session *discordgo.Session
	cfg     *config.Config

	ships   *services.ShipService
	auth    *services.AuthService
	locks   *locks.Registry
	limiter *middleware.RateLimiter
	updater *Updater
}

// InitBot builds the repositories, services and session, registers the
// gateway handlers and slash commands, and opens the connection.
func InitBot(cfg *config.Config, db *gorm.DB) (*Bot, error) {
	shipRepo := repositories.NewShipRepository(db)
	warRepo := repositories.NewWarRepository(db)
	supplyRepo := repositories.NewSupplyRepository(db)
	authRepo := repositories.NewAuthRepository(db)
	instanceRepo := repositories.NewInstanceRepository(db)

	ships := services.NewShipService(shipRepo, warRepo, supplyRepo, authRepo, instanceRepo, cfg.WarNumber, cfg.SquadLockDays)
	if _, err := ships.CurrentWarID(); err != nil {
		return nil, fmt.Errorf("failed to ensure war row: %w", err)
	}

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	auth := services.NewAuthService(newSessionRoleProvider(session), ships, authRepo, instanceRepo, cfg)

	bot := &Bot{
		session: session,
		cfg:     cfg,
		ships:   ships,
		auth:    auth,
		locks:   locks.NewRegistry(),
		limiter: middleware.NewRateLimiter(cfg.RateLimitPerUser, time.Minute),
		updater: NewUpdater(session, shipRepo, instanceRepo),
	}

	session.AddHandler(bot.onInteractionCreate)
	session.AddHandler(bot.onGuildMemberUpdate)
	session.AddHandler(bot.onGuildMemberRemove)
	session.AddHandler(bot.onGuildRoleDelete)

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open gateway connection: %w", err)
	}

	// Dev guild registration is instant; global takes up to an hour.
	if _, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, cfg.DevGuildID, applicationCommands()); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}

	logger.Info("Bot connected", "user", session.State.User.Username, "war", cfg.WarNumber)
	return bot, nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		logger.Error("Error closing session", "error", err)
	}
}

// interactionUserID works for both guild (Member) and DM (User) payloads.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Panic in interaction handler", "panic", rec)
		}
	}()

	if i.GuildID == "" {
		respondEphemeral(s, i, "This bot only works inside a server.")
		return
	}

	userID := interactionUserID(i)
	if userID == "" {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if !b.limiter.Allow(userID) {
			respondEphemeral(s, i, "You are doing that too fast. Try again in a minute.")
			return
		}
		b.handleCommand(s, i, userID)

	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(s, i)

	case discordgo.InteractionMessageComponent:
		if !b.limiter.Allow(userID) {
			respondEphemeral(s, i, "You are doing that too fast. Try again in a minute.")
			return
		}
		b.handleComponent(s, i, userID)

	case discordgo.InteractionModalSubmit:
		b.handleModalSubmit(s, i, userID)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate, userID string) {
	data := i.ApplicationCommandData()
	switch data.Name {
	case "ship":
		b.handleShipCommand(s, i, userID, data)
	case "auth":
		b.handleAuthCommand(s, i, userID, data)
	case "war":
		b.handleWarCommand(s, i, data)
	default:
		respondEphemeral(s, i, "Unknown command.")
	}
}
