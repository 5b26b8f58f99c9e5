package discord

import (
	stderrors "errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/foxhole-tools/shiptracker/pkg/errors"
	"github.com/foxhole-tools/shiptracker/pkg/logger"
)

// respondEphemeral sends (or follows up with) an ephemeral text reply,
// tolerating an already-acknowledged interaction.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err == nil {
		return
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		logger.Warn("Failed to respond to interaction", "error", err)
	}
}

// respondError is the single boundary between the core and the user: known
// error codes map to friendly messages, anything else is logged in full and
// surfaced generically.
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Code {
		case errors.ErrCodeNotAuthorized:
			respondEphemeral(s, i, "You're not authorized to do that here.")
			return
		case errors.ErrCodeNotFound:
			respondEphemeral(s, i, appErr.Message)
			return
		case errors.ErrCodeValidation, errors.ErrCodeAlreadyExists:
			respondEphemeral(s, i, appErr.Message)
			return
		case errors.ErrCodeReadOnly:
			respondEphemeral(s, i, "This ship is marked Dead and is read-only.")
			return
		case errors.ErrCodeRateLimited:
			respondEphemeral(s, i, "You're doing that too fast. Try again in a moment.")
			return
		}
	}

	if isRESTStatus(err, http.StatusForbidden) {
		respondEphemeral(s, i, "I don't have permission to do that here.")
		return
	}
	var restErr *discordgo.RESTError
	if stderrors.As(err, &restErr) {
		respondEphemeral(s, i, "Discord API error. Try again soon.")
		return
	}

	logger.Error("Unhandled error in interaction", "error", err)
	respondEphemeral(s, i, "Unexpected error. The logs will have details.")
}

// isRESTStatus reports whether err is a Discord REST error with the given
// HTTP status.
func isRESTStatus(err error, status int) bool {
	var restErr *discordgo.RESTError
	if !stderrors.As(err, &restErr) {
		return false
	}
	return restErr.Response != nil && restErr.Response.StatusCode == status
}
