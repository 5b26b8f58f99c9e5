package repositories

import (
	"testing"
)

func TestRegisterInstanceIdempotent(t *testing.T) {
	db := newTestDB(t)
	instRepo := NewInstanceRepository(db)
	shipRepo := NewShipRepository(db)
	ship := createTestShip(t, shipRepo, "guild1", 117, "Longhook")

	if err := instRepo.RegisterInstance(ship.ID, "guild1", "chan1", "msg1", true); err != nil {
		t.Fatalf("RegisterInstance() error = %v", err)
	}
	// Re-posting the same message must not duplicate the row.
	if err := instRepo.RegisterInstance(ship.ID, "guild1", "chan1", "msg1", true); err != nil {
		t.Fatalf("repeat RegisterInstance() error = %v", err)
	}

	instances, err := instRepo.GetInstances(ship.ID)
	if err != nil {
		t.Fatalf("GetInstances() error = %v", err)
	}
	if len(instances) != 1 {
		t.Errorf("GetInstances() returned %d rows, want 1", len(instances))
	}
}

func TestGetInstanceGuildIDs(t *testing.T) {
	db := newTestDB(t)
	instRepo := NewInstanceRepository(db)
	shipRepo := NewShipRepository(db)
	ship := createTestShip(t, shipRepo, "guild1", 117, "Longhook")

	instRepo.RegisterInstance(ship.ID, "guild1", "chan1", "msg1", true)
	instRepo.RegisterInstance(ship.ID, "guild1", "chan2", "msg2", false)
	instRepo.RegisterInstance(ship.ID, "guild2", "chan3", "msg3", false)

	guilds, err := instRepo.GetInstanceGuildIDs(ship.ID)
	if err != nil {
		t.Fatalf("GetInstanceGuildIDs() error = %v", err)
	}
	if len(guilds) != 2 {
		t.Errorf("GetInstanceGuildIDs() = %v, want 2 distinct guilds", guilds)
	}
}
