package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/pkg/errors"
	"github.com/foxhole-tools/shiptracker/pkg/locks"
)

func TestGetOrCreateShip(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))

	ship, err := svc.GetOrCreateShip("guild1", "Longhook", &ShipDefaults{
		Type:     "Frigate",
		HomePort: "Blackwatch",
		Damage:   9,
	})
	if err != nil {
		t.Fatalf("GetOrCreateShip() error = %v", err)
	}
	if ship.Status != models.StatusParked {
		t.Errorf("new ship status = %q, want Parked", ship.Status)
	}
	if ship.Damage != models.DamageMax {
		t.Errorf("new ship damage = %d, want clamped to %d", ship.Damage, models.DamageMax)
	}
	if ship.WarID != testWar {
		t.Errorf("new ship war = %d, want %d", ship.WarID, testWar)
	}

	// A second call returns the same row, defaults ignored.
	again, err := svc.GetOrCreateShip("guild1", "Longhook", &ShipDefaults{Type: "Submarine"})
	if err != nil {
		t.Fatalf("second GetOrCreateShip() error = %v", err)
	}
	if again.ID != ship.ID || again.Type != "Frigate" {
		t.Errorf("second call = id %d type %q, want id %d type Frigate", again.ID, again.Type, ship.ID)
	}
}

func TestUpdateFieldByName(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	svc.GetOrCreateShip("guild1", "Longhook", nil)

	ship, err := svc.UpdateFieldByName("guild1", "Longhook", "user1", "damage", "9")
	if err != nil {
		t.Fatalf("UpdateFieldByName() error = %v", err)
	}
	if ship.Damage != 5 {
		t.Errorf("damage = %d, want clamped to 5", ship.Damage)
	}

	tests := []struct {
		name  string
		field string
		value string
	}{
		{"non-numeric damage", "damage", "lots"},
		{"unknown field", "guild_id", "evil"},
		{"bad image url", "image_url", "javascript:alert(1)"},
		{"bad squad lock", "squad_lock_until", "tomorrow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateFieldByName("guild1", "Longhook", "user1", tt.field, tt.value)
			if errors.Code(err) != errors.ErrCodeValidation {
				t.Errorf("error code = %q, want VALIDATION_ERROR", errors.Code(err))
			}
		})
	}
}

func TestDeadShipReadOnly(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	ship, _ := svc.GetOrCreateShip("guild1", "Longhook", nil)

	if err := svc.MarkDead(ship.ID, "user1"); err != nil {
		t.Fatalf("MarkDead() error = %v", err)
	}

	if _, err := svc.UpdateFieldByName("guild1", "Longhook", "user1", "location", "Oarbreaker"); errors.Code(err) != errors.ErrCodeReadOnly {
		t.Errorf("field update on dead ship code = %q, want READ_ONLY", errors.Code(err))
	}
	if err := svc.Depart(ship.ID, "user1"); errors.Code(err) != errors.ErrCodeReadOnly {
		t.Errorf("Depart on dead ship code = %q, want READ_ONLY", errors.Code(err))
	}
	if err := svc.SetNotes(ship.ID, "user1", "x"); errors.Code(err) != errors.ErrCodeReadOnly {
		t.Errorf("SetNotes on dead ship code = %q, want READ_ONLY", errors.Code(err))
	}
	if err := svc.EditFieldsBulk(ship.ID, "user1", map[string]string{"name": "Ghost"}); errors.Code(err) != errors.ErrCodeReadOnly {
		t.Errorf("EditFieldsBulk on dead ship code = %q, want READ_ONLY", errors.Code(err))
	}
	if _, err := svc.GenerateShareCode(ship.ID, "user1"); errors.Code(err) != errors.ErrCodeReadOnly {
		t.Errorf("GenerateShareCode on dead ship code = %q, want READ_ONLY", errors.Code(err))
	}

	// The status casing does not matter for the guard.
	other, _ := svc.GetOrCreateShip("guild1", "Bloodtide", nil)
	svc.SetStatus(other.ID, "user1", "dead")
	if err := svc.Depart(other.ID, "user1"); errors.Code(err) != errors.ErrCodeReadOnly {
		t.Errorf("lowercase dead status not treated read-only")
	}
}

func TestLifecycle(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	ship, _ := svc.GetOrCreateShip("guild1", "Longhook", nil)

	if err := svc.Depart(ship.ID, "user1"); err != nil {
		t.Fatalf("Depart() error = %v", err)
	}
	got, _ := svc.GetShipByID(ship.ID)
	if got.Status != models.StatusDeployed {
		t.Errorf("status after Depart = %q, want Deployed", got.Status)
	}

	if err := svc.StartRepairs(ship.ID, "user1", "Blackwatch drydock"); err != nil {
		t.Fatalf("StartRepairs() error = %v", err)
	}
	got, _ = svc.GetShipByID(ship.ID)
	if got.Status != models.StatusRepairing || got.Location != "Blackwatch drydock" {
		t.Errorf("after StartRepairs = %q @ %q", got.Status, got.Location)
	}

	if err := svc.FinishRepairs(ship.ID, "user1", "Blackwatch", "fresh plates"); err != nil {
		t.Fatalf("FinishRepairs() error = %v", err)
	}
	got, _ = svc.GetShipByID(ship.ID)
	if got.Status != models.StatusParked || got.Damage != 0 || got.Location != "Blackwatch" || got.Notes != "fresh plates" {
		t.Errorf("after FinishRepairs = %+v", got)
	}

	svc.Depart(ship.ID, "user1")
	if err := svc.ReturnToPort(ship.ID, "user1", "Oarbreaker", "3", "two smokes left"); err != nil {
		t.Fatalf("ReturnToPort() error = %v", err)
	}
	got, _ = svc.GetShipByID(ship.ID)
	if got.Status != models.StatusParked || got.Damage != 3 || got.Location != "Oarbreaker" {
		t.Errorf("after ReturnToPort = %+v", got)
	}
}

func TestRefreshSquadLock(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	ship, _ := svc.GetOrCreateShip("guild1", "Longhook", nil)

	before := time.Now().Unix()
	ts, err := svc.RefreshSquadLock(ship.ID, "user1")
	if err != nil {
		t.Fatalf("RefreshSquadLock() error = %v", err)
	}

	wantMin := before + 2*24*3600
	if ts < wantMin || ts > wantMin+5 {
		t.Errorf("lock ts = %d, want about %d", ts, wantMin)
	}
	got, _ := svc.GetShipByID(ship.ID)
	if got.SquadLockUntil != ts {
		t.Errorf("stored lock = %d, want %d", got.SquadLockUntil, ts)
	}
}

func TestShareCodeImport(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	origin, _ := svc.GetOrCreateShip("guild1", "Longhook", &ShipDefaults{Type: "Frigate", Regiment: "BMS"})

	code, err := svc.GenerateShareCode(origin.ID, "user1")
	if err != nil {
		t.Fatalf("GenerateShareCode() error = %v", err)
	}
	if !ShareCodeRE.MatchString(code) {
		t.Fatalf("code %q does not match the share code shape", code)
	}

	linked, err := svc.ImportFromShareCode("guild2", "user2", code)
	if err != nil {
		t.Fatalf("ImportFromShareCode() error = %v", err)
	}
	if linked.GuildID != "guild2" || linked.Name != "Longhook" || linked.Type != "Frigate" {
		t.Errorf("imported copy = %+v", linked)
	}
	if linked.LinkRootID == nil || *linked.LinkRootID != origin.ID {
		t.Errorf("imported copy link root = %v, want %d", linked.LinkRootID, origin.ID)
	}

	// Codes are one-time.
	if _, err := svc.ImportFromShareCode("guild3", "user3", code); errors.Code(err) != errors.ErrCodeNotFound {
		t.Errorf("second import code = %q, want NOT_FOUND", errors.Code(err))
	}

	// A mutation on either row now reaches both.
	if err := svc.SetLocation(linked.ID, "user2", "Fisherman's Row"); err != nil {
		t.Fatalf("SetLocation() error = %v", err)
	}
	originNow, _ := svc.GetShipByID(origin.ID)
	if originNow.Location != "Fisherman's Row" {
		t.Errorf("origin location = %q, want propagated value", originNow.Location)
	}
}

func TestLockKeySharedAcrossLinkGroup(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	origin, _ := svc.GetOrCreateShip("guild1", "Longhook", nil)
	lone, _ := svc.GetOrCreateShip("guild1", "Bloodtide", nil)

	code, _ := svc.GenerateShareCode(origin.ID, "user1")
	linked, err := svc.ImportFromShareCode("guild2", "user2", code)
	if err != nil {
		t.Fatalf("ImportFromShareCode() error = %v", err)
	}

	// Both cards of the pair must contend for the same lock, or a kill
	// through one card can race a mutation through the other.
	if svc.LockKey(origin.ID) != svc.LockKey(linked.ID) {
		t.Errorf("lock keys differ across a link group: %q vs %q",
			svc.LockKey(origin.ID), svc.LockKey(linked.ID))
	}
	if svc.LockKey(lone.ID) == svc.LockKey(origin.ID) {
		t.Error("unrelated ships share a lock key")
	}
}

func TestConcurrentUpdatesAuditChain(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	ship, _ := svc.GetOrCreateShip("guild1", "Longhook", nil)

	const workers = 8
	registry := locks.NewRegistry()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			registry.RunExclusive(svc.LockKey(ship.ID), func() error {
				_, err := svc.UpdateFieldByName("guild1", "Longhook", fmt.Sprintf("user%d", w), "location", fmt.Sprintf("berth-%d", w))
				return err
			})
		}(w)
	}
	wg.Wait()

	updates, err := svc.ListUpdates(ship.ID)
	if err != nil {
		t.Fatalf("ListUpdates() error = %v", err)
	}
	if len(updates) != workers {
		t.Fatalf("got %d audit rows, want %d", len(updates), workers)
	}
	if updates[0].OldValue != "" {
		t.Errorf("first audit old value = %q, want the initial blank location", updates[0].OldValue)
	}
	for k := 1; k < len(updates); k++ {
		if updates[k].OldValue != updates[k-1].NewValue {
			t.Errorf("audit[%d] old = %q, want previous new %q", k, updates[k].OldValue, updates[k-1].NewValue)
		}
	}
}

func TestImportSameGuildReturnsOrigin(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	origin, _ := svc.GetOrCreateShip("guild1", "Longhook", nil)
	code, _ := svc.GenerateShareCode(origin.ID, "user1")

	got, err := svc.ImportFromShareCode("guild1", "user1", code)
	if err != nil {
		t.Fatalf("ImportFromShareCode() error = %v", err)
	}
	if got.ID != origin.ID {
		t.Errorf("same-guild import = %d, want origin %d", got.ID, origin.ID)
	}
}

func TestImportNameClashSuffixes(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	origin, _ := svc.GetOrCreateShip("guild1", "Longhook", nil)
	svc.GetOrCreateShip("guild2", "Longhook", nil)

	// The code is burned on consumption, so a clash renames instead of
	// failing the import.
	code, _ := svc.GenerateShareCode(origin.ID, "user1")
	linked, err := svc.ImportFromShareCode("guild2", "user2", code)
	if err != nil {
		t.Fatalf("clash import error = %v", err)
	}
	if linked.Name != "Longhook (2)" {
		t.Errorf("clash import name = %q, want Longhook (2)", linked.Name)
	}
	if linked.LinkRootID == nil || *linked.LinkRootID != origin.ID {
		t.Errorf("clash import link root = %v, want %d", linked.LinkRootID, origin.ID)
	}

	// The next collision moves on to (3).
	svc.GetOrCreateShip("guild3", "Longhook", nil)
	svc.GetOrCreateShip("guild3", "Longhook (2)", nil)
	code, _ = svc.GenerateShareCode(origin.ID, "user1")
	linked, err = svc.ImportFromShareCode("guild3", "user3", code)
	if err != nil {
		t.Fatalf("second clash import error = %v", err)
	}
	if linked.Name != "Longhook (3)" {
		t.Errorf("second clash import name = %q, want Longhook (3)", linked.Name)
	}
}

func TestEnsureForPost(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))

	ship, imported, err := svc.EnsureForPost("guild1", "user1", "Longhook")
	if err != nil {
		t.Fatalf("EnsureForPost(name) error = %v", err)
	}
	if imported {
		t.Error("plain name flagged as import")
	}

	code, _ := svc.GenerateShareCode(ship.ID, "user1")
	got, imported, err := svc.EnsureForPost("guild2", "user2", code)
	if err != nil {
		t.Fatalf("EnsureForPost(code) error = %v", err)
	}
	if !imported {
		t.Error("share code not flagged as import")
	}
	if got.GuildID != "guild2" {
		t.Errorf("imported guild = %q, want guild2", got.GuildID)
	}

	if _, _, err := svc.EnsureForPost("guild1", "user1", ""); errors.Code(err) != errors.ErrCodeValidation {
		t.Errorf("blank identifier code = %q, want VALIDATION_ERROR", errors.Code(err))
	}
}

func TestEditFieldsBulkAuditOrder(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	ship, _ := svc.GetOrCreateShip("guild1", "Longhook", nil)

	err := svc.EditFieldsBulk(ship.ID, "user1", map[string]string{
		"location": "Oarbreaker",
		"name":     "Longhook II",
		"damage":   "2",
	})
	if err != nil {
		t.Fatalf("EditFieldsBulk() error = %v", err)
	}

	updates, err := svc.ListUpdates(ship.ID)
	if err != nil {
		t.Fatalf("ListUpdates() error = %v", err)
	}
	wantFields := []string{"name", "damage", "location"}
	if len(updates) != len(wantFields) {
		t.Fatalf("got %d audit rows, want %d", len(updates), len(wantFields))
	}
	for i, field := range wantFields {
		if updates[i].Field != field {
			t.Errorf("audit[%d].Field = %q, want %q", i, updates[i].Field, field)
		}
	}

	got, _ := svc.GetShipByID(ship.ID)
	if got.Name != "Longhook II" || got.Damage != 2 || got.Location != "Oarbreaker" {
		t.Errorf("after bulk edit = %+v", got)
	}
}

func TestEditFieldsBulkValidates(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	ship, _ := svc.GetOrCreateShip("guild1", "Longhook", nil)

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"overlong name", map[string]string{"name": strings.Repeat("x", 80), "location": "Oarbreaker"}},
		{"overlong location", map[string]string{"location": strings.Repeat("x", 200)}},
		{"non-numeric damage", map[string]string{"damage": "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.EditFieldsBulk(ship.ID, "user1", tt.fields)
			if errors.Code(err) != errors.ErrCodeValidation {
				t.Errorf("error code = %q, want VALIDATION_ERROR", errors.Code(err))
			}
		})
	}

	// A rejected edit mutates nothing, even the fields that were valid.
	got, _ := svc.GetShipByID(ship.ID)
	if got.Name != "Longhook" || got.Location != "" {
		t.Errorf("ship after rejected edits = %+v, want untouched", got)
	}
	updates, _ := svc.ListUpdates(ship.ID)
	if len(updates) != 0 {
		t.Errorf("got %d audit rows after rejected edits, want 0", len(updates))
	}
}

func TestAddShipAuthUserParsing(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	ship, _ := svc.GetOrCreateShip("guild1", "Longhook", nil)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain id", "123456789012345678", false},
		{"mention", "<@123456789012345678>", false},
		{"nick mention", "<@!123456789012345678>", false},
		{"garbage", "bob", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AddShipAuthUser(ship.ID, tt.input, "admin")
			if (err != nil) != tt.wantErr {
				t.Errorf("AddShipAuthUser(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSetSupply(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	svc.GetOrCreateShip("guild1", "Longhook", nil)

	supplies, err := svc.SetSupply("guild1", "Longhook", "user1", "Shells", 40)
	if err != nil {
		t.Fatalf("SetSupply() error = %v", err)
	}
	if len(supplies) != 1 || supplies[0].Quantity != 40 {
		t.Errorf("supplies = %+v", supplies)
	}

	if _, err := svc.SetSupply("guild1", "Longhook", "user1", "", 1); errors.Code(err) != errors.ErrCodeValidation {
		t.Errorf("blank resource code = %q, want VALIDATION_ERROR", errors.Code(err))
	}
	if _, err := svc.SetSupply("guild1", "Ghost", "user1", "Shells", 1); errors.Code(err) != errors.ErrCodeNotFound {
		t.Errorf("missing ship code = %q, want NOT_FOUND", errors.Code(err))
	}
}

func TestEndWar(t *testing.T) {
	svc := newTestShipService(t, newTestDB(t))
	if _, err := svc.CurrentWarID(); err != nil {
		t.Fatalf("CurrentWarID() error = %v", err)
	}

	if err := svc.EndWar(); err != nil {
		t.Fatalf("EndWar() error = %v", err)
	}
	war, err := svc.GetWar()
	if err != nil {
		t.Fatalf("GetWar() error = %v", err)
	}
	if !war.Ended() {
		t.Error("war not marked ended")
	}
	if err := svc.EndWar(); errors.Code(err) != errors.ErrCodeAlreadyExists {
		t.Errorf("second EndWar() code = %q, want ALREADY_EXISTS", errors.Code(err))
	}
}
