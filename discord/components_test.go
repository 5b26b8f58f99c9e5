package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/foxhole-tools/shiptracker/internal/models"
)

func TestCIDRoundTrip(t *testing.T) {
	cid := makeCID(42, 117, modeManage, "share_code")
	ref, ok := parseCID(cid)
	if !ok {
		t.Fatalf("parseCID(%q) failed", cid)
	}
	if ref.ShipID != 42 || ref.WarID != 117 || ref.Mode != modeManage || ref.Action != "share_code" {
		t.Errorf("parseCID(%q) = %+v", cid, ref)
	}
}

func TestParseCIDRejectsGarbage(t *testing.T) {
	tests := []string{
		"",
		"st:addtype:Longhook",
		"st:ship:notanumber:war:117:mode:main:act:depart",
		"st:ship:42:war:xyz:mode:main:act:depart",
		"other:ship:42:war:117:mode:main:act:depart",
		"st:ship:42:war:117:mode:main",
	}
	for _, cid := range tests {
		if _, ok := parseCID(cid); ok {
			t.Errorf("parseCID(%q) accepted", cid)
		}
	}
}

func buttonLabels(rows []discordgo.MessageComponent) []string {
	var labels []string
	for _, row := range rows {
		ar, ok := row.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			if btn, ok := c.(discordgo.Button); ok {
				labels = append(labels, btn.Label)
			}
		}
	}
	return labels
}

func hasLabel(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}

func TestShipCardComponentsFollowStatus(t *testing.T) {
	parked := &models.Ship{ID: 1, WarID: 117, Status: models.StatusParked}
	labels := buttonLabels(shipCardComponents(parked, modeMain))
	if !hasLabel(labels, "Depart") || hasLabel(labels, "Return") {
		t.Errorf("parked card labels = %v, want Depart without Return", labels)
	}
	if !hasLabel(labels, "Repair") || hasLabel(labels, "Finish Repairs") {
		t.Errorf("parked card labels = %v, want Repair without Finish Repairs", labels)
	}

	deployed := &models.Ship{ID: 1, WarID: 117, Status: models.StatusDeployed}
	labels = buttonLabels(shipCardComponents(deployed, modeMain))
	if !hasLabel(labels, "Return") || hasLabel(labels, "Depart") {
		t.Errorf("deployed card labels = %v, want Return without Depart", labels)
	}

	repairing := &models.Ship{ID: 1, WarID: 117, Status: models.StatusRepairing}
	labels = buttonLabels(shipCardComponents(repairing, modeMain))
	if !hasLabel(labels, "Finish Repairs") {
		t.Errorf("repairing card labels = %v, want Finish Repairs", labels)
	}
	if !hasLabel(labels, "Return") {
		t.Errorf("repairing card labels = %v, want Return", labels)
	}
}

func TestShipCardComponentsModes(t *testing.T) {
	ship := &models.Ship{ID: 1, WarID: 117, Status: models.StatusParked}

	manage := buttonLabels(shipCardComponents(ship, modeManage))
	for _, want := range []string{"Edit", "Log", "Share", "Add User", "Kill", "◀ Back"} {
		if !hasLabel(manage, want) {
			t.Errorf("manage labels = %v, missing %q", manage, want)
		}
	}

	info := buttonLabels(shipCardComponents(ship, modeInfo))
	for _, want := range []string{"Actions", "Kill Log", "Op Log", "Supplies", "◀ Back"} {
		if !hasLabel(info, want) {
			t.Errorf("info labels = %v, missing %q", info, want)
		}
	}
}
