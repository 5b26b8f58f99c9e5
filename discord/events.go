package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Gateway listeners that keep the auth caches honest: role data changed on
// Discord's side, so the next check must not trust what we cached.

func (b *Bot) onGuildMemberUpdate(_ *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	if e.Member == nil || e.User == nil {
		return
	}
	if e.BeforeUpdate != nil && sameRoles(e.BeforeUpdate.Roles, e.Roles) {
		return
	}
	b.auth.InvalidateMember(e.GuildID, e.User.ID)
}

func (b *Bot) onGuildMemberRemove(_ *discordgo.Session, e *discordgo.GuildMemberRemove) {
	if e.Member == nil || e.User == nil {
		return
	}
	b.auth.InvalidateMember(e.GuildID, e.User.ID)
}

func (b *Bot) onGuildRoleDelete(_ *discordgo.Session, e *discordgo.GuildRoleDelete) {
	b.auth.InvalidateGuildRoles(e.GuildID)
}

func sameRoles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, r := range a {
		set[r] = struct{}{}
	}
	for _, r := range b {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
