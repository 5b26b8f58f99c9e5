package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/internal/repositories"
	"github.com/foxhole-tools/shiptracker/internal/security"
	"github.com/foxhole-tools/shiptracker/pkg/errors"
	"github.com/foxhole-tools/shiptracker/pkg/utils"
)

// ShareCodeRE matches a one-time share code: 8 uppercase letters/digits.
var ShareCodeRE = regexp.MustCompile(`^[A-Z0-9]{8}$`)

var mentionRE = regexp.MustCompile(`^<@!?(\d+)>$`)

// ShipService owns every ship mutation. The war is one global number from
// configuration; mutations propagate across link groups and every change
// leaves an audit row. Callers serialize mutations via the lock registry
// under LockKey, which is shared by every ship in a link group.
type ShipService struct {
	shipRepo     *repositories.ShipRepository
	warRepo      *repositories.WarRepository
	supplyRepo   *repositories.SupplyRepository
	authRepo     *repositories.AuthRepository
	instanceRepo *repositories.InstanceRepository

	warID         uint
	squadLockDays int
}

func NewShipService(
	shipRepo *repositories.ShipRepository,
	warRepo *repositories.WarRepository,
	supplyRepo *repositories.SupplyRepository,
	authRepo *repositories.AuthRepository,
	instanceRepo *repositories.InstanceRepository,
	warNumber uint,
	squadLockDays int,
) *ShipService {
	return &ShipService{
		shipRepo:      shipRepo,
		warRepo:       warRepo,
		supplyRepo:    supplyRepo,
		authRepo:      authRepo,
		instanceRepo:  instanceRepo,
		warID:         warNumber,
		squadLockDays: squadLockDays,
	}
}

// CurrentWarID ensures the war row exists and returns the global war number.
func (s *ShipService) CurrentWarID() (uint, error) {
	if err := s.warRepo.EnsureWar(s.warID); err != nil {
		return 0, err
	}
	return s.warID, nil
}

// EndWar closes the current war.
func (s *ShipService) EndWar() error {
	warID, err := s.CurrentWarID()
	if err != nil {
		return err
	}
	return s.warRepo.EndWar(warID)
}

// GetWar returns the current war row.
func (s *ShipService) GetWar() (*models.War, error) {
	warID, err := s.CurrentWarID()
	if err != nil {
		return nil, err
	}
	return s.warRepo.GetWar(warID)
}

// GetShip resolves a ship by name within the guild's current war.
func (s *ShipService) GetShip(guildID, name string) (*models.Ship, error) {
	warID, err := s.CurrentWarID()
	if err != nil {
		return nil, err
	}
	return s.shipRepo.GetShip(guildID, warID, strings.TrimSpace(name))
}

// GetShipByID resolves a ship by primary key.
func (s *ShipService) GetShipByID(shipID uint) (*models.Ship, error) {
	return s.shipRepo.GetShipByID(shipID)
}

// ListShips lists the guild's ships for the current war.
func (s *ShipService) ListShips(guildID string) ([]models.Ship, error) {
	warID, err := s.CurrentWarID()
	if err != nil {
		return nil, err
	}
	return s.shipRepo.ListShips(guildID, warID)
}

// SearchShipNames backs slash-command autocomplete; Dead ships are hidden.
func (s *ShipService) SearchShipNames(guildID, query string, limit int) ([]string, error) {
	warID, err := s.CurrentWarID()
	if err != nil {
		return nil, err
	}
	return s.shipRepo.SearchShipNames(guildID, warID, query, limit, true)
}

// ShipDefaults seeds a newly created ship.
type ShipDefaults struct {
	Type     string
	Status   string
	Damage   int
	Location string
	HomePort string
	Regiment string
	Keys     string
	LockTS   int64
}

// GetOrCreateShip returns the existing ship of that name or creates one.
func (s *ShipService) GetOrCreateShip(guildID, name string, defaults *ShipDefaults) (*models.Ship, error) {
	warID, err := s.CurrentWarID()
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	existing, err := s.shipRepo.GetShip(guildID, warID, name)
	if err == nil {
		return existing, nil
	}
	if errors.Code(err) != errors.ErrCodeNotFound {
		return nil, err
	}

	ship := &models.Ship{
		GuildID: guildID,
		WarID:   warID,
		Name:    name,
		Status:  models.StatusParked,
	}
	if defaults != nil {
		ship.Type = defaults.Type
		if defaults.Status != "" {
			ship.Status = defaults.Status
		}
		ship.Damage = clampDamageInt(defaults.Damage)
		ship.Location = defaults.Location
		ship.HomePort = defaults.HomePort
		ship.Regiment = defaults.Regiment
		ship.Keys = defaults.Keys
		ship.SquadLockUntil = defaults.LockTS
	}
	if err := s.shipRepo.CreateShip(ship); err != nil {
		return nil, err
	}
	return ship, nil
}

// UpdateFieldByName normalizes and applies a named-field update to a ship
// resolved by name, returning the fresh row for fan-out.
func (s *ShipService) UpdateFieldByName(guildID, name, userID, field, value string) (*models.Ship, error) {
	ship, err := s.GetShip(guildID, name)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeFieldValue(field, value)
	if err != nil {
		return nil, err
	}

	if err := s.ensureMutable(ship); err != nil {
		return nil, err
	}
	if err := s.shipRepo.UpdateFieldLinked(ship.ID, userID, field, normalized); err != nil {
		return nil, err
	}
	return s.shipRepo.GetShipByID(ship.ID)
}

// normalizeFieldValue validates raw command and modal input per field before
// it gets anywhere near the repository. Unknown fields are rejected here too.
// The length limits mirror the column widths on the ships table.
func normalizeFieldValue(field, value string) (any, error) {
	switch field {
	case "image_url":
		return security.ValidateURL(value)
	case "name":
		return security.ValidateShipName(value)
	case "status":
		return security.ClampText(value, 32)
	case "type":
		return security.ClampText(value, security.MaxNameLength)
	case "location", "home_port", "regiment":
		return security.ClampText(value, 100)
	case "keys":
		return security.ClampText(value, 200)
	case "notes":
		return security.ClampText(value, security.MaxTextLength)
	case "damage":
		v := strings.TrimSpace(value)
		if _, err := strconv.Atoi(v); err != nil {
			return nil, errors.New(errors.ErrCodeValidation, "damage must be an integer 0-5")
		}
		return clampDamage(v), nil
	case "squad_lock_until":
		ts, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeValidation, "squad_lock_until must be a unix timestamp")
		}
		return ts, nil
	default:
		return nil, errors.New(errors.ErrCodeValidation, "unsupported field")
	}
}

// LockKey is the mutation serialization key for a ship. Linked ships share
// one key, derived from the link-group root, so a press on one card excludes
// presses on every sibling card. A failed root lookup falls back to the
// ship's own id; the repository's in-transaction dead check still holds.
func (s *ShipService) LockKey(shipID uint) string {
	rootID, err := s.shipRepo.GetLinkRootID(shipID)
	if err != nil {
		rootID = shipID
	}
	return fmt.Sprintf("ship:%d", rootID)
}

func (s *ShipService) ensureMutable(ship *models.Ship) error {
	if ship.IsDead() {
		return errors.New(errors.ErrCodeReadOnly, "this ship is marked Dead and is read-only")
	}
	return nil
}

func (s *ShipService) updateLinked(shipID uint, userID, field string, value any) error {
	ship, err := s.shipRepo.GetShipByID(shipID)
	if err != nil {
		return err
	}
	if err := s.ensureMutable(ship); err != nil {
		return err
	}
	return s.shipRepo.UpdateFieldLinked(shipID, userID, field, value)
}

// SetStatus sets the status across the link group.
func (s *ShipService) SetStatus(shipID uint, userID, status string) error {
	return s.updateLinked(shipID, userID, "status", strings.TrimSpace(status))
}

// SetLocation sets the location; blank clears it.
func (s *ShipService) SetLocation(shipID uint, userID, where string) error {
	return s.updateLinked(shipID, userID, "location", strings.TrimSpace(where))
}

// SetDamageClamped parses free-text damage and clamps it to 0-5.
// Unparseable input means 0; modal fields are forgiving on purpose.
func (s *ShipService) SetDamageClamped(shipID uint, userID, damage string) error {
	return s.updateLinked(shipID, userID, "damage", clampDamage(damage))
}

// SetNotes replaces the notes; blank clears them.
func (s *ShipService) SetNotes(shipID uint, userID, notes string) error {
	clean := security.SanitizeText(notes)
	return s.updateLinked(shipID, userID, "notes", clean)
}

// RefreshSquadLock stamps a new lock expiry of now + the configured number
// of days and returns it for display.
func (s *ShipService) RefreshSquadLock(shipID uint, userID string) (int64, error) {
	ts := time.Now().Unix() + int64(s.squadLockDays)*24*3600
	if err := s.updateLinked(shipID, userID, "squad_lock_until", ts); err != nil {
		return 0, err
	}
	return ts, nil
}

// Depart marks the ship Deployed.
func (s *ShipService) Depart(shipID uint, userID string) error {
	return s.SetStatus(shipID, userID, models.StatusDeployed)
}

// StartRepairs records the drydock location and flips status to Repairing.
func (s *ShipService) StartRepairs(shipID uint, userID, drydockLoc string) error {
	if err := s.SetLocation(shipID, userID, drydockLoc); err != nil {
		return err
	}
	return s.SetStatus(shipID, userID, models.StatusRepairing)
}

// FinishRepairs parks the ship at the given location with zero damage.
func (s *ShipService) FinishRepairs(shipID uint, userID, parkedWhere, notes string) error {
	if err := s.SetLocation(shipID, userID, parkedWhere); err != nil {
		return err
	}
	if err := s.updateLinked(shipID, userID, "damage", 0); err != nil {
		return err
	}
	if err := s.SetNotes(shipID, userID, notes); err != nil {
		return err
	}
	return s.SetStatus(shipID, userID, models.StatusParked)
}

// ReturnToPort records location, damage and notes, then parks the ship.
func (s *ShipService) ReturnToPort(shipID uint, userID, where, smokes, notes string) error {
	if err := s.SetLocation(shipID, userID, where); err != nil {
		return err
	}
	if err := s.SetDamageClamped(shipID, userID, smokes); err != nil {
		return err
	}
	if err := s.SetNotes(shipID, userID, notes); err != nil {
		return err
	}
	return s.SetStatus(shipID, userID, models.StatusParked)
}

// MarkDead is the one audited override allowed on the way into the terminal
// state; it skips the dead-guard and propagates across the link group.
func (s *ShipService) MarkDead(shipID uint, userID string) error {
	return s.shipRepo.UpdateFieldLinked(shipID, userID, "status", models.StatusDead)
}

// EditFieldsBulk applies several validated fields from the edit modal, each
// propagated across the link group with its own audit row.
func (s *ShipService) EditFieldsBulk(shipID uint, userID string, fields map[string]string) error {
	ship, err := s.shipRepo.GetShipByID(shipID)
	if err != nil {
		return err
	}
	if err := s.ensureMutable(ship); err != nil {
		return err
	}

	// Every field validates before anything applies, so one bad value
	// rejects the whole edit without a partial write. Fixed application
	// order keeps audit trails deterministic.
	type change struct {
		field string
		value any
	}
	var changes []change
	for _, field := range []string{"name", "status", "damage", "location", "home_port", "regiment", "keys", "type", "image_url", "notes"} {
		raw, ok := fields[field]
		if !ok {
			continue
		}
		value, err := normalizeFieldValue(field, raw)
		if err != nil {
			return err
		}
		changes = append(changes, change{field: field, value: value})
	}
	for _, c := range changes {
		if err := s.shipRepo.UpdateFieldLinked(shipID, userID, c.field, c.value); err != nil {
			return err
		}
	}
	return nil
}

// LogKillAndOp appends kill and/or debrief entries. Logs stay per ship row.
func (s *ShipService) LogKillAndOp(shipID uint, userID, killsRaw, debrief string) error {
	if k := strings.TrimSpace(killsRaw); k != "" {
		if err := s.shipRepo.AddKill(shipID, userID, k); err != nil {
			return err
		}
	}
	if d := strings.TrimSpace(debrief); d != "" {
		if err := s.shipRepo.AddOp(shipID, userID, d); err != nil {
			return err
		}
	}
	return nil
}

// SetSupply upserts one resource count on the guild's copy of the ship.
func (s *ShipService) SetSupply(guildID, name, userID, resource string, quantity int) ([]models.ShipSupply, error) {
	ship, err := s.GetShip(guildID, name)
	if err != nil {
		return nil, err
	}
	resource, err = security.ClampText(resource, security.MaxNameLength)
	if err != nil {
		return nil, err
	}
	if resource == "" {
		return nil, errors.New(errors.ErrCodeValidation, "resource name required")
	}
	if err := s.supplyRepo.SetSupply(ship.ID, resource, quantity); err != nil {
		return nil, err
	}
	return s.supplyRepo.ListSupplies(ship.ID)
}

// History reads surfaced by the card info views.

func (s *ShipService) ListUpdates(shipID uint) ([]models.ShipUpdate, error) {
	return s.shipRepo.ListUpdates(shipID)
}

func (s *ShipService) ListKills(shipID uint, limit int) ([]models.ShipKill, error) {
	return s.shipRepo.ListKills(shipID, limit)
}

func (s *ShipService) ListOps(shipID uint, limit int) ([]models.ShipOp, error) {
	return s.shipRepo.ListOps(shipID, limit)
}

func (s *ShipService) ListSupplies(shipID uint) ([]models.ShipSupply, error) {
	return s.supplyRepo.ListSupplies(shipID)
}

// AddShipAuthUser grants ship access to a user given a raw id or mention.
func (s *ShipService) AddShipAuthUser(shipID uint, userText, authedBy string) error {
	userID := strings.TrimSpace(userText)
	if m := mentionRE.FindStringSubmatch(userID); m != nil {
		userID = m[1]
	}
	if userID == "" || !isDigits(userID) {
		return errors.New(errors.ErrCodeValidation, "expected a user mention or numeric id")
	}
	return s.authRepo.AddShipAuthUser(shipID, userID, authedBy)
}

// GenerateShareCode mints a one-time code and stores it on this ship row
// only; codes deliberately do not propagate across link groups.
func (s *ShipService) GenerateShareCode(shipID uint, userID string) (string, error) {
	ship, err := s.shipRepo.GetShipByID(shipID)
	if err != nil {
		return "", err
	}
	if err := s.ensureMutable(ship); err != nil {
		return "", err
	}

	code := utils.GenerateShareCode()
	if code == "" {
		return "", errors.New(errors.ErrCodeInternalError, "failed to generate share code")
	}
	if err := s.shipRepo.UpdateField(shipID, userID, "share_code", code); err != nil {
		return "", err
	}
	return code, nil
}

// ConsumeShareCode resolves and clears a code, returning the origin ship id.
func (s *ShipService) ConsumeShareCode(code string) (uint, error) {
	return s.shipRepo.ConsumeShareCode(code)
}

// ImportFromShareCode consumes a code and materializes a linked copy of the
// origin ship in the target guild. The copy shares the origin's link root,
// so from then on the two rows mutate in lockstep.
func (s *ShipService) ImportFromShareCode(targetGuildID, userID, code string) (*models.Ship, error) {
	originID, err := s.ConsumeShareCode(code)
	if err != nil {
		return nil, err
	}
	origin, err := s.shipRepo.GetShipByID(originID)
	if err != nil {
		return nil, err
	}

	warID, err := s.CurrentWarID()
	if err != nil {
		return nil, err
	}

	if origin.GuildID == targetGuildID {
		return origin, nil
	}

	name, err := s.importName(targetGuildID, warID, origin.Name)
	if err != nil {
		return nil, err
	}

	rootID, err := s.shipRepo.EnsureSelfRooted(origin.ID)
	if err != nil {
		return nil, err
	}

	linked := &models.Ship{
		GuildID:        targetGuildID,
		WarID:          warID,
		Name:           name,
		Type:           origin.Type,
		Status:         origin.Status,
		Damage:         origin.Damage,
		Location:       origin.Location,
		HomePort:       origin.HomePort,
		Regiment:       origin.Regiment,
		Notes:          origin.Notes,
		Keys:           origin.Keys,
		ImageURL:       origin.ImageURL,
		SquadLockUntil: origin.SquadLockUntil,
		LinkRootID:     &rootID,
	}
	if err := s.shipRepo.CreateShip(linked); err != nil {
		return nil, err
	}
	return linked, nil
}

// importName resolves a name collision in the target guild by suffixing,
// "Longhook" becoming "Longhook (2)". The code is already consumed by the
// time this runs, so a clash must not fail the import.
func (s *ShipService) importName(guildID string, warID uint, name string) (string, error) {
	_, err := s.shipRepo.GetShip(guildID, warID, name)
	if errors.Code(err) == errors.ErrCodeNotFound {
		return name, nil
	}
	if err != nil {
		return "", err
	}

	for n := 2; n <= 9; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if overflow := len(base) + len(suffix) - security.MaxNameLength; overflow > 0 {
			base = base[:len(base)-overflow]
		}
		candidate := strings.TrimSpace(string(base)) + suffix

		_, err := s.shipRepo.GetShip(guildID, warID, candidate)
		if errors.Code(err) == errors.ErrCodeNotFound {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New(errors.ErrCodeAlreadyExists, "too many ships with that name already exist here")
}

// EnsureForPost resolves the /ship post identifier: a code-shaped string is
// consumed as an import, anything else is a name to fetch or create.
func (s *ShipService) EnsureForPost(guildID, userID, identifier string) (*models.Ship, bool, error) {
	ident := strings.TrimSpace(identifier)
	if ShareCodeRE.MatchString(ident) {
		ship, err := s.ImportFromShareCode(guildID, userID, ident)
		return ship, true, err
	}
	name, err := security.ValidateShipName(ident)
	if err != nil {
		return nil, false, err
	}
	ship, err := s.GetOrCreateShip(guildID, name, nil)
	return ship, false, err
}

// RegisterInstance records a posted card for the ship.
func (s *ShipService) RegisterInstance(shipID uint, guildID, channelID, messageID string, isOriginal bool) error {
	return s.instanceRepo.RegisterInstance(shipID, guildID, channelID, messageID, isOriginal)
}

func clampDamage(raw string) int {
	v := strings.TrimSpace(raw)
	iv, err := strconv.Atoi(v)
	if err != nil {
		return models.DamageMin
	}
	return clampDamageInt(iv)
}

func clampDamageInt(v int) int {
	if v < models.DamageMin {
		return models.DamageMin
	}
	if v > models.DamageMax {
		return models.DamageMax
	}
	return v
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
