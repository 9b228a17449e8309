package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testTemplate(itemTitles ...string) *ChecklistTemplate {
	t := &ChecklistTemplate{
		ID:       uuid.New(),
		BrandID:  uuid.New(),
		Name:     "opening checklist",
		IsActive: true,
	}
	for i, title := range itemTitles {
		t.Items = append(t.Items, ChecklistTemplateItem{
			ID:               uuid.New(),
			TemplateID:       t.ID,
			Title:            title,
			VerificationType: VerificationNone,
			SortOrder:        i + 1,
			IsActive:         true,
		})
	}
	return t
}

func TestGenerateSnapshotCopiesActiveItemsInOrder(t *testing.T) {
	tpl := testTemplate("preheat grill", "stock napkins", "wipe counter")
	// Shuffle sort orders to prove ordering comes from SortOrder, not slice order.
	tpl.Items[0].SortOrder = 3
	tpl.Items[1].SortOrder = 1
	tpl.Items[2].SortOrder = 2
	tpl.Items = append(tpl.Items, ChecklistTemplateItem{
		ID: uuid.New(), Title: "retired step", SortOrder: 0, IsActive: false,
	})

	snap, err := GenerateSnapshot(tpl, time.Now())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(snap.Items) != 3 {
		t.Fatalf("expected 3 items (inactive excluded), got %d", len(snap.Items))
	}
	want := []string{"stock napkins", "wipe counter", "preheat grill"}
	for i, title := range want {
		if snap.Items[i].Title != title {
			t.Fatalf("item %d: expected %q, got %q", i, title, snap.Items[i].Title)
		}
		if snap.Items[i].IsCompleted || snap.Items[i].CompletedAt != nil || snap.Items[i].VerificationData != nil {
			t.Fatalf("item %d: expected pristine completion state", i)
		}
	}
	if snap.TemplateID != tpl.ID || snap.TemplateName != tpl.Name {
		t.Fatalf("snapshot must carry source template identity")
	}
}

func TestGenerateSnapshotBreaksSortTiesByID(t *testing.T) {
	tpl := testTemplate("a", "b")
	tpl.Items[0].SortOrder = 1
	tpl.Items[1].SortOrder = 1

	first, err := GenerateSnapshot(tpl, time.Now())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := GenerateSnapshot(tpl, time.Now())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	for i := range first.Items {
		if first.Items[i].TemplateItemID != second.Items[i].TemplateItemID {
			t.Fatalf("tie-broken order must be deterministic across generations")
		}
	}
}

func TestGenerateSnapshotRejectsEmptyTemplate(t *testing.T) {
	tpl := testTemplate("only item")
	tpl.Items[0].IsActive = false

	if _, err := GenerateSnapshot(tpl, time.Now()); !IsValidation(err) {
		t.Fatalf("expected ValidationError for template with no active items, got %v", err)
	}
}

func TestSnapshotItemLookup(t *testing.T) {
	tpl := testTemplate("a", "b")
	snap, err := GenerateSnapshot(tpl, time.Now())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if snap.Item(tpl.Items[1].ID) == nil {
		t.Fatalf("expected lookup by template item id to succeed")
	}
	if snap.Item(uuid.New()) != nil {
		t.Fatalf("expected unknown id to return nil")
	}
}
