package store

import (
	"testing"

	"github.com/magolabs/aimaster/internal/database"
	"github.com/magolabs/aimaster/internal/model"
)

func setupRoutineTestDB(t *testing.T) (*RoutineStore, *DeckStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRoutineStore(db), NewDeckStore(db), NewUserStore(db)
}

func TestRoutineCRUD(t *testing.T) {
	rs, ds, us := setupRoutineTestDB(t)

	owner, _ := us.Create("routine@example.com", "h")
	deck, _ := ds.Create(owner.ID, "Orden1", nil, nil)

	stack := "Orden1"
	nodes := rawNodes(t, `[{"id":"n1","type":"Iniciar","config":{}}]`)
	r, err := rs.Create(owner.ID, "Magia de Cerca", &stack, &deck.ID, nodes, nil)
	if err != nil {
		t.Fatalf("create routine: %v", err)
	}
	if r.Name != "Magia de Cerca" {
		t.Errorf("name = %q, want %q", r.Name, "Magia de Cerca")
	}
	if r.Stack == nil || *r.Stack != "Orden1" {
		t.Errorf("stack = %v, want Orden1", r.Stack)
	}
	if r.DeckID == nil || *r.DeckID != deck.ID {
		t.Errorf("deck_id = %v, want %d", r.DeckID, deck.ID)
	}
	if r.DeckOrder != nil {
		t.Errorf("deck_order = %v, want nil", r.DeckOrder)
	}
	if r.LastRunAt != nil {
		t.Errorf("last_run_at = %v, want nil", r.LastRunAt)
	}

	order := rawNodes(t, `["AS","KH","2C"]`)
	updated, err := rs.Update(r.ID, owner.ID, "Renombrada", nil, nil, r.Nodes, &order)
	if err != nil {
		t.Fatalf("update routine: %v", err)
	}
	if updated.Name != "Renombrada" {
		t.Errorf("name = %q, want %q", updated.Name, "Renombrada")
	}
	if updated.Stack != nil {
		t.Errorf("stack = %v, want nil", updated.Stack)
	}
	if updated.DeckID != nil {
		t.Errorf("deck_id = %v, want nil", updated.DeckID)
	}
	if updated.DeckOrder == nil || len(*updated.DeckOrder) != 3 {
		t.Errorf("deck_order = %v, want 3 entries", updated.DeckOrder)
	}

	deleted, err := rs.Delete(r.ID, owner.ID)
	if err != nil {
		t.Fatalf("delete routine: %v", err)
	}
	if !deleted {
		t.Error("expected delete to remove a row")
	}
	got, _ := rs.GetByID(r.ID, owner.ID)
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestRoutineOwnershipScoping(t *testing.T) {
	rs, _, us := setupRoutineTestDB(t)

	alice, _ := us.Create("alice@example.com", "h")
	bob, _ := us.Create("bob@example.com", "h")

	r, _ := rs.Create(alice.ID, "Secreta", nil, nil, nil, nil)

	got, err := rs.GetByID(r.ID, bob.ID)
	if err != nil {
		t.Fatalf("get routine: %v", err)
	}
	if got != nil {
		t.Error("expected foreign routine to be invisible")
	}

	routines, _ := rs.ListByOwner(bob.ID)
	if len(routines) != 0 {
		t.Errorf("bob sees %d routines, want 0", len(routines))
	}
}

func TestRoutineDeckDeleteSetsNull(t *testing.T) {
	rs, ds, us := setupRoutineTestDB(t)

	owner, _ := us.Create("fk@example.com", "h")
	deck, _ := ds.Create(owner.ID, "Orden1", nil, nil)
	r, _ := rs.Create(owner.ID, "Ligada", nil, &deck.ID, nil, nil)

	if _, err := ds.Delete(deck.ID, owner.ID); err != nil {
		t.Fatalf("delete deck: %v", err)
	}

	got, err := rs.GetByID(r.ID, owner.ID)
	if err != nil {
		t.Fatalf("get routine: %v", err)
	}
	if got == nil {
		t.Fatal("routine should survive deck deletion")
	}
	if got.DeckID != nil {
		t.Errorf("deck_id = %v, want nil after deck deletion", got.DeckID)
	}
}

func TestRoutineEmptyDeckOrderIsNotNull(t *testing.T) {
	rs, _, us := setupRoutineTestDB(t)

	owner, _ := us.Create("order@example.com", "h")

	empty := model.NodeList{}
	r, err := rs.Create(owner.ID, "Con orden vacio", nil, nil, nil, &empty)
	if err != nil {
		t.Fatalf("create routine: %v", err)
	}
	if r.DeckOrder == nil {
		t.Fatal("expected empty deck_order to round-trip as [] not null")
	}
	if len(*r.DeckOrder) != 0 {
		t.Errorf("deck_order length = %d, want 0", len(*r.DeckOrder))
	}
}
