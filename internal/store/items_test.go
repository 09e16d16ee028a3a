package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/shareit/internal/db"
	"github.com/erazemk/shareit/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, _ := CreateUser(ctx, database, "owner", "o@example.com")
	item, err := CreateItem(ctx, database, &model.Item{
		Name: "Drill", Description: "Cordless drill", Available: true, OwnerID: owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Name != "Drill" || !item.Available || item.OwnerID != owner.ID {
		t.Errorf("unexpected item: %+v", item)
	}
	if item.RequestID != nil {
		t.Errorf("expected nil request id, got %v", *item.RequestID)
	}

	missing, err := GetItem(ctx, database, 999)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestUpdateItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, _ := CreateUser(ctx, database, "owner", "o@example.com")
	item, _ := CreateItem(ctx, database, &model.Item{Name: "Drill", Description: "d", Available: true, OwnerID: owner.ID})

	item.Available = false
	item.Description = "Broken"
	if err := UpdateItem(ctx, database, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Available || got.Description != "Broken" || got.Name != "Drill" {
		t.Errorf("unexpected item after update: %+v", got)
	}
}

func TestListItemsByOwnerPaging(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, _ := CreateUser(ctx, database, "owner", "o@example.com")
	other, _ := CreateUser(ctx, database, "other", "x@example.com")
	for _, name := range []string{"a", "b", "c"} {
		CreateItem(ctx, database, &model.Item{Name: name, Description: name, Available: true, OwnerID: owner.ID})
	}
	CreateItem(ctx, database, &model.Item{Name: "z", Description: "z", Available: true, OwnerID: other.ID})

	first, err := ListItemsByOwner(ctx, database, owner.ID, model.Page{From: 0, Size: 2})
	if err != nil {
		t.Fatalf("ListItemsByOwner: %v", err)
	}
	if len(first) != 2 || first[0].Name != "a" {
		t.Errorf("unexpected first page: %+v", first)
	}

	// From 3 falls on the second page of size 2.
	second, _ := ListItemsByOwner(ctx, database, owner.ID, model.Page{From: 3, Size: 2})
	if len(second) != 1 || second[0].Name != "c" {
		t.Errorf("unexpected second page: %+v", second)
	}
}

func TestSearchItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, _ := CreateUser(ctx, database, "owner", "o@example.com")
	CreateItem(ctx, database, &model.Item{Name: "Power Drill", Description: "tool", Available: true, OwnerID: owner.ID})
	CreateItem(ctx, database, &model.Item{Name: "Saw", Description: "Like a DRILL but not", Available: true, OwnerID: owner.ID})
	CreateItem(ctx, database, &model.Item{Name: "Drill bits", Description: "spare", Available: false, OwnerID: owner.ID})
	CreateItem(ctx, database, &model.Item{Name: "100% cotton", Description: "sheet", Available: true, OwnerID: owner.ID})

	page := model.Page{From: 0, Size: 10}
	found, err := SearchItems(ctx, database, "dRiLl", page)
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected 2 available matches, got %d", len(found))
	}

	pct, _ := SearchItems(ctx, database, "%", page)
	if len(pct) != 1 || pct[0].Name != "100% cotton" {
		t.Errorf("expected literal %% match, got %+v", pct)
	}
}

func TestSearchItemsUnicode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, _ := CreateUser(ctx, database, "owner", "o@example.com")
	CreateItem(ctx, database, &model.Item{Name: "Дрель", Description: "ударная", Available: true, OwnerID: owner.ID})
	CreateItem(ctx, database, &model.Item{Name: "Éclair maker", Description: "pastry", Available: true, OwnerID: owner.ID})
	CreateItem(ctx, database, &model.Item{Name: "Rack", Description: "Fahrradständer für die Straße", Available: true, OwnerID: owner.ID})

	page := model.Page{From: 0, Size: 10}
	tests := []struct {
		text string
		want string
	}{
		{"Дрель", "Дрель"},
		{"дрель", "Дрель"},
		{"ДРЕЛЬ", "Дрель"},
		{"УДАР", "Дрель"},
		{"éclair", "Éclair maker"},
		{"ÉCLAIR", "Éclair maker"},
		{"STRASSE", "Rack"},
	}
	for _, tt := range tests {
		found, err := SearchItems(ctx, database, tt.text, page)
		if err != nil {
			t.Fatalf("SearchItems(%q): %v", tt.text, err)
		}
		if len(found) != 1 || found[0].Name != tt.want {
			t.Errorf("SearchItems(%q) = %+v, want only %q", tt.text, found, tt.want)
		}
	}
}

func TestItemsByRequester(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	requester, _ := CreateUser(ctx, database, "req", "r@example.com")
	owner, _ := CreateUser(ctx, database, "owner", "o@example.com")
	req, _ := CreateRequest(ctx, database, requester.ID, "need a ladder", time.Now())

	CreateItem(ctx, database, &model.Item{Name: "Ladder", Description: "tall", Available: true, OwnerID: owner.ID, RequestID: &req.ID})
	CreateItem(ctx, database, &model.Item{Name: "Chair", Description: "short", Available: true, OwnerID: owner.ID})

	byRequester, err := ListItemsByRequester(ctx, database, requester.ID)
	if err != nil {
		t.Fatalf("ListItemsByRequester: %v", err)
	}
	if len(byRequester) != 1 || byRequester[0].RequestID == nil || *byRequester[0].RequestID != req.ID {
		t.Errorf("unexpected items for requester: %+v", byRequester)
	}

	none, _ := ListItemsByRequester(ctx, database, owner.ID)
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", none)
	}
}

func TestDeleteItemCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, _ := CreateUser(ctx, database, "owner", "o@example.com")
	booker, _ := CreateUser(ctx, database, "booker", "b@example.com")
	item, _ := CreateItem(ctx, database, &model.Item{Name: "Drill", Description: "d", Available: true, OwnerID: owner.ID})

	now := time.Now().UTC()
	booking, err := CreateBooking(ctx, database, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := CreateComment(ctx, database, booker.ID, item.ID, "great", now); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	got, _ := GetBooking(ctx, database, booking.ID)
	if got != nil {
		t.Error("expected booking to be deleted with its item")
	}
	comments, _ := ListCommentsByItem(ctx, database, item.ID)
	if len(comments) != 0 {
		t.Errorf("expected comments to be deleted, got %d", len(comments))
	}
}
