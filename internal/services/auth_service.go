package services

import (
	"github.com/foxhole-tools/shiptracker/internal/config"
	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/internal/repositories"
	"github.com/foxhole-tools/shiptracker/pkg/cache"
	"github.com/foxhole-tools/shiptracker/pkg/errors"
)

// RoleProvider fetches a user's live role ids in one guild from Discord.
// Implementations return an empty set (not an error) when the member is
// unknown or the bot lacks access, so authorization fails closed.
type RoleProvider interface {
	MemberRoleIDs(guildID, userID string) ([]string, error)
}

type memberKey struct {
	GuildID string
	UserID  string
}

// AuthService answers "may this user act on this ship" across every guild
// the ship is present in. Role data comes from Discord and is slow, so each
// tier of the lookup has its own TTL cache; correctness is eventually
// consistent unless an invalidation hook fires first.
type AuthService struct {
	roles RoleProvider
	ships *ShipService

	authRepo     *repositories.AuthRepository
	instanceRepo *repositories.InstanceRepository

	memberRolesCache  *cache.TTLCache[memberKey, map[string]struct{}]
	authRolesMapCache *cache.TTLCache[string, map[string]struct{}]
	shipPresenceCache *cache.TTLCache[uint, []string]
}

func NewAuthService(
	roles RoleProvider,
	ships *ShipService,
	authRepo *repositories.AuthRepository,
	instanceRepo *repositories.InstanceRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		roles:        roles,
		ships:        ships,
		authRepo:     authRepo,
		instanceRepo: instanceRepo,

		memberRolesCache:  cache.New[memberKey, map[string]struct{}](cfg.MemberTTL(), cache.ThreadSafe(true)),
		authRolesMapCache: cache.New[string, map[string]struct{}](cfg.RolesMapTTL(), cache.ThreadSafe(true)),
		shipPresenceCache: cache.New[uint, []string](cfg.InstanceGuildsTTL(), cache.ThreadSafe(true)),
	}
}

func (s *AuthService) memberRoleIDs(guildID, userID string) (map[string]struct{}, error) {
	key := memberKey{GuildID: guildID, UserID: userID}
	if cached, ok := s.memberRolesCache.Get(key); ok {
		return cached, nil
	}

	ids, err := s.roles.MemberRoleIDs(guildID, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.memberRolesCache.Set(key, set)
	return set, nil
}

func (s *AuthService) guildAuthRoles(guildID string) (map[string]struct{}, error) {
	if cached, ok := s.authRolesMapCache.Get(guildID); ok {
		return cached, nil
	}

	rolesMap, err := s.authRepo.GetGuildAuthRolesMany([]string{guildID})
	if err != nil {
		return nil, err
	}
	set := rolesMap[guildID]
	if set == nil {
		set = make(map[string]struct{})
	}
	s.authRolesMapCache.Set(guildID, set)
	return set, nil
}

// shipPresenceGuilds is the ship's home guild plus every guild holding a
// registered instance. Registrations change rarely relative to reads, so
// the set is cached per ship id.
func (s *AuthService) shipPresenceGuilds(shipID uint, homeGuildID string) ([]string, error) {
	if cached, ok := s.shipPresenceCache.Get(shipID); ok {
		return cached, nil
	}

	guildIDs, err := s.instanceRepo.GetInstanceGuildIDs(shipID)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{homeGuildID: {}}
	presence := []string{homeGuildID}
	for _, gid := range guildIDs {
		if _, dup := seen[gid]; dup {
			continue
		}
		seen[gid] = struct{}{}
		presence = append(presence, gid)
	}

	s.shipPresenceCache.Set(shipID, presence)
	return presence, nil
}

// IsAuthorizedForShip resolves the three permission tiers in cost order:
// per-ship grant, then guild user allow-lists, then guild role allow-lists
// intersected with live member roles, each across the full presence set.
// An unknown ship denies rather than erroring.
func (s *AuthService) IsAuthorizedForShip(requestingGuildID, shipName, userID string) (bool, error) {
	ship, err := s.ships.GetShip(requestingGuildID, shipName)
	if err != nil {
		if errors.Code(err) == errors.ErrCodeNotFound {
			return false, nil
		}
		return false, err
	}
	return s.authorizeShip(ship, userID)
}

// IsAuthorizedForShipID is IsAuthorizedForShip for callers that already hold
// a ship id, as component interactions encode the id rather than the name.
func (s *AuthService) IsAuthorizedForShipID(shipID uint, userID string) (bool, error) {
	ship, err := s.ships.GetShipByID(shipID)
	if err != nil {
		if errors.Code(err) == errors.ErrCodeNotFound {
			return false, nil
		}
		return false, err
	}
	return s.authorizeShip(ship, userID)
}

func (s *AuthService) authorizeShip(ship *models.Ship, userID string) (bool, error) {
	// 1) Per-ship grant
	granted, err := s.authRepo.IsUserAuthorizedForShip(ship.ID, userID)
	if err != nil {
		return false, err
	}
	if granted {
		return true, nil
	}

	presenceGuilds, err := s.shipPresenceGuilds(ship.ID, ship.GuildID)
	if err != nil {
		return false, err
	}

	// 2) Guild-level user allow-list in any presence guild
	listed, err := s.authRepo.IsUserInGuildAuthUsersAny(presenceGuilds, userID)
	if err != nil {
		return false, err
	}
	if listed {
		return true, nil
	}

	// 3) Guild-level role allow-list in any presence guild
	for _, gid := range presenceGuilds {
		authRoles, err := s.guildAuthRoles(gid)
		if err != nil {
			return false, err
		}
		if len(authRoles) == 0 {
			continue
		}
		memberRoles, err := s.memberRoleIDs(gid, userID)
		if err != nil {
			return false, err
		}
		for rid := range memberRoles {
			if _, ok := authRoles[rid]; ok {
				return true, nil
			}
		}
	}

	return false, nil
}

// IsAuthorizedForGuild answers the simpler "may this user act here at all",
// for actions not yet bound to a ship (creating or posting one).
func (s *AuthService) IsAuthorizedForGuild(guildID, userID string) (bool, error) {
	listed, err := s.authRepo.IsUserInGuildAuthUsersAny([]string{guildID}, userID)
	if err != nil {
		return false, err
	}
	if listed {
		return true, nil
	}

	authRoles, err := s.guildAuthRoles(guildID)
	if err != nil {
		return false, err
	}
	if len(authRoles) == 0 {
		return false, nil
	}

	memberRoles, err := s.memberRoleIDs(guildID, userID)
	if err != nil {
		return false, err
	}
	for rid := range memberRoles {
		if _, ok := authRoles[rid]; ok {
			return true, nil
		}
	}
	return false, nil
}

// Allow-list management. The stored lists are replace-all, so add and
// remove read the current list and write it back whole.

func (s *AuthService) AddGuildAuthUser(guildID, userID string) error {
	users, err := s.authRepo.GetGuildAuthUsers(guildID)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u == userID {
			return nil
		}
	}
	return s.authRepo.SetGuildAuthUsers(guildID, append(users, userID))
}

func (s *AuthService) RemoveGuildAuthUser(guildID, userID string) error {
	users, err := s.authRepo.GetGuildAuthUsers(guildID)
	if err != nil {
		return err
	}
	kept := users[:0]
	for _, u := range users {
		if u != userID {
			kept = append(kept, u)
		}
	}
	return s.authRepo.SetGuildAuthUsers(guildID, kept)
}

func (s *AuthService) AddGuildAuthRole(guildID, roleID string) error {
	roles, err := s.authRepo.GetGuildAuthRoles(guildID)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if r == roleID {
			return nil
		}
	}
	if err := s.authRepo.SetGuildAuthRoles(guildID, append(roles, roleID)); err != nil {
		return err
	}
	s.InvalidateGuildRoles(guildID)
	return nil
}

func (s *AuthService) RemoveGuildAuthRole(guildID, roleID string) error {
	roles, err := s.authRepo.GetGuildAuthRoles(guildID)
	if err != nil {
		return err
	}
	kept := roles[:0]
	for _, r := range roles {
		if r != roleID {
			kept = append(kept, r)
		}
	}
	if err := s.authRepo.SetGuildAuthRoles(guildID, kept); err != nil {
		return err
	}
	s.InvalidateGuildRoles(guildID)
	return nil
}

// ListGuildAuth returns the stored user and role allow-lists for one guild.
func (s *AuthService) ListGuildAuth(guildID string) (users, roleIDs []string, err error) {
	users, err = s.authRepo.GetGuildAuthUsers(guildID)
	if err != nil {
		return nil, nil, err
	}
	roleIDs, err = s.authRepo.GetGuildAuthRoles(guildID)
	if err != nil {
		return nil, nil, err
	}
	return users, roleIDs, nil
}

// Invalidation hooks; collaborators call these on the triggering event so
// the next check reads fresh data instead of waiting out the TTL.

// InvalidateMember drops the cached role set for one member.
func (s *AuthService) InvalidateMember(guildID, userID string) {
	s.memberRolesCache.Invalidate(memberKey{GuildID: guildID, UserID: userID})
}

// InvalidateGuildRoles drops a guild's cached role allow-list.
func (s *AuthService) InvalidateGuildRoles(guildID string) {
	s.authRolesMapCache.Invalidate(guildID)
}

// InvalidateShipPresence drops a ship's cached presence set.
func (s *AuthService) InvalidateShipPresence(shipID uint) {
	s.shipPresenceCache.Invalidate(shipID)
}
