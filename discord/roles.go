package discord

import (
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// sessionRoleProvider feeds the auth resolver live member role data from
// Discord. Unknown members and access failures come back as an empty set so
// the resolver fails closed; the resolver's TTL cache keeps call volume down.
type sessionRoleProvider struct {
	session *discordgo.Session
}

func newSessionRoleProvider(session *discordgo.Session) *sessionRoleProvider {
	return &sessionRoleProvider{session: session}
}

func (p *sessionRoleProvider) MemberRoleIDs(guildID, userID string) ([]string, error) {
	if member, err := p.session.State.Member(guildID, userID); err == nil && member != nil {
		return member.Roles, nil
	}

	member, err := p.session.GuildMember(guildID, userID)
	if err != nil {
		if isRESTStatus(err, http.StatusNotFound) || isRESTStatus(err, http.StatusForbidden) {
			return nil, nil
		}
		return nil, err
	}
	return member.Roles, nil
}
