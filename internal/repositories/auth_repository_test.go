package repositories

import (
	"testing"
)

func TestGuildAuthUsersReplaceAll(t *testing.T) {
	repo := NewAuthRepository(newTestDB(t))

	if err := repo.SetGuildAuthUsers("guild1", []string{"u1", "u2"}); err != nil {
		t.Fatalf("SetGuildAuthUsers() error = %v", err)
	}
	if err := repo.SetGuildAuthUsers("guild1", []string{"u3"}); err != nil {
		t.Fatalf("SetGuildAuthUsers() error = %v", err)
	}

	users, err := repo.GetGuildAuthUsers("guild1")
	if err != nil {
		t.Fatalf("GetGuildAuthUsers() error = %v", err)
	}
	if len(users) != 1 || users[0] != "u3" {
		t.Errorf("GetGuildAuthUsers() = %v, want [u3]", users)
	}

	// Clearing with an empty list works too.
	if err := repo.SetGuildAuthUsers("guild1", nil); err != nil {
		t.Fatalf("SetGuildAuthUsers(nil) error = %v", err)
	}
	users, _ = repo.GetGuildAuthUsers("guild1")
	if len(users) != 0 {
		t.Errorf("GetGuildAuthUsers() after clear = %v, want empty", users)
	}
}

func TestIsUserInGuildAuthUsersAny(t *testing.T) {
	repo := NewAuthRepository(newTestDB(t))
	repo.SetGuildAuthUsers("guild1", []string{"u1"})
	repo.SetGuildAuthUsers("guild2", []string{"u2"})

	tests := []struct {
		name   string
		guilds []string
		userID string
		want   bool
	}{
		{"listed in first guild", []string{"guild1", "guild2"}, "u1", true},
		{"listed in second guild", []string{"guild1", "guild2"}, "u2", true},
		{"not listed anywhere", []string{"guild1", "guild2"}, "u3", false},
		{"listed but guild not in set", []string{"guild2"}, "u1", false},
		{"empty guild set", nil, "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.IsUserInGuildAuthUsersAny(tt.guilds, tt.userID)
			if err != nil {
				t.Fatalf("IsUserInGuildAuthUsersAny() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsUserInGuildAuthUsersAny(%v, %q) = %v, want %v", tt.guilds, tt.userID, got, tt.want)
			}
		})
	}
}

func TestGetGuildAuthRolesMany(t *testing.T) {
	repo := NewAuthRepository(newTestDB(t))
	repo.SetGuildAuthRoles("guild1", []string{"r1", "r2"})
	repo.SetGuildAuthRoles("guild2", []string{"r3"})

	byGuild, err := repo.GetGuildAuthRolesMany([]string{"guild1", "guild2", "guild3"})
	if err != nil {
		t.Fatalf("GetGuildAuthRolesMany() error = %v", err)
	}

	if len(byGuild["guild1"]) != 2 {
		t.Errorf("guild1 roles = %v, want 2 entries", byGuild["guild1"])
	}
	if _, ok := byGuild["guild1"]["r2"]; !ok {
		t.Error("guild1 missing r2")
	}
	if len(byGuild["guild2"]) != 1 {
		t.Errorf("guild2 roles = %v, want 1 entry", byGuild["guild2"])
	}
	if len(byGuild["guild3"]) != 0 {
		t.Errorf("guild3 roles = %v, want none", byGuild["guild3"])
	}
}

func TestShipAuthUser(t *testing.T) {
	db := newTestDB(t)
	authRepo := NewAuthRepository(db)
	shipRepo := NewShipRepository(db)
	ship := createTestShip(t, shipRepo, "guild1", 117, "Longhook")

	granted, err := authRepo.IsUserAuthorizedForShip(ship.ID, "u1")
	if err != nil {
		t.Fatalf("IsUserAuthorizedForShip() error = %v", err)
	}
	if granted {
		t.Error("grant reported before it was made")
	}

	if err := authRepo.AddShipAuthUser(ship.ID, "u1", "admin"); err != nil {
		t.Fatalf("AddShipAuthUser() error = %v", err)
	}
	// A second grant for the same pair is a no-op, not an error.
	if err := authRepo.AddShipAuthUser(ship.ID, "u1", "admin"); err != nil {
		t.Fatalf("repeat AddShipAuthUser() error = %v", err)
	}

	granted, err = authRepo.IsUserAuthorizedForShip(ship.ID, "u1")
	if err != nil {
		t.Fatalf("IsUserAuthorizedForShip() error = %v", err)
	}
	if !granted {
		t.Error("grant not reported after AddShipAuthUser")
	}

	// Grants are per ship.
	other := createTestShip(t, shipRepo, "guild1", 117, "Bloodtide")
	granted, _ = authRepo.IsUserAuthorizedForShip(other.ID, "u1")
	if granted {
		t.Error("grant leaked to another ship")
	}
}
