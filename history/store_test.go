package history

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	// Deterministic, strictly increasing clock.
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return store
}

func validRequest(promptType string) SaveRequest {
	tokens := 42
	elapsed := int64(1200)
	return SaveRequest{
		PromptType:      promptType,
		Prompt:          "Analyze AAPL",
		Provider:        "claude",
		Model:           "claude-sonnet-4-5",
		Response:        "Looks fine.",
		TokensUsed:      &tokens,
		ResponseTimeMs:  &elapsed,
		InputParameters: map[string]any{"symbol": "AAPL", "amount": 1000.5},
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result, err := store.Save(ctx, validRequest("stock-analysis"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result.ID == 0 {
		t.Error("Expected a non-zero id")
	}
	if result.Message != "Prompt saved successfully" {
		t.Errorf("Expected success message, got %q", result.Message)
	}
	if result.Timestamp.Location() != time.UTC {
		t.Errorf("Expected UTC timestamp, got %v", result.Timestamp.Location())
	}

	rec, err := store.Get(ctx, result.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.PromptType != "stock-analysis" || rec.Provider != "claude" || rec.Response != "Looks fine." {
		t.Errorf("Unexpected record %+v", rec)
	}
	if !rec.Timestamp.Equal(result.Timestamp) {
		t.Errorf("Expected timestamp %v, got %v", result.Timestamp, rec.Timestamp)
	}
	if rec.TokensUsed == nil || *rec.TokensUsed != 42 {
		t.Errorf("Expected 42 tokens, got %v", rec.TokensUsed)
	}
	if rec.ResponseTimeMs == nil || *rec.ResponseTimeMs != 1200 {
		t.Errorf("Expected 1200ms, got %v", rec.ResponseTimeMs)
	}
	if rec.InputParameters["symbol"] != "AAPL" || rec.InputParameters["amount"] != 1000.5 {
		t.Errorf("Unexpected input parameters %v", rec.InputParameters)
	}
}

func TestStore_SaveOptionalFieldsAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := validRequest("custom")
	req.TokensUsed = nil
	req.ResponseTimeMs = nil
	req.InputParameters = nil

	result, err := store.Save(ctx, req)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec, err := store.Get(ctx, result.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.TokensUsed != nil || rec.ResponseTimeMs != nil || rec.InputParameters != nil {
		t.Errorf("Expected optional fields to be nil, got %+v", rec)
	}
}

func TestStore_SaveValidation(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name    string
		mutate  func(*SaveRequest)
		message string
	}{
		{"missing prompt type", func(r *SaveRequest) { r.PromptType = "" }, "Prompt type is required"},
		{"blank prompt", func(r *SaveRequest) { r.Prompt = "   " }, "Prompt is required"},
		{"missing provider", func(r *SaveRequest) { r.Provider = "" }, "Provider is required"},
		{"missing model", func(r *SaveRequest) { r.Model = "" }, "Model is required"},
		{"missing response", func(r *SaveRequest) { r.Response = "" }, "Response is required"},
		{"long prompt type", func(r *SaveRequest) { r.PromptType = strings.Repeat("x", 51) }, "promptType must be at most 50 characters"},
		{"long model", func(r *SaveRequest) { r.Model = strings.Repeat("m", 101) }, "model must be at most 100 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest("stock-analysis")
			tt.mutate(&req)

			_, err := store.Save(context.Background(), req)
			if !IsValidationError(err) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if err.Error() != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, err.Error())
			}
		})
	}

	all, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Expected nothing saved, got %d records", len(all))
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for _, typ := range []string{"stock-analysis", "portfolio-review", "stock-analysis"} {
		res, err := store.Save(ctx, validRequest(typ))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, res.ID)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(all))
	}
	if all[0].ID != ids[2] || all[2].ID != ids[0] {
		t.Errorf("Expected newest first, got ids %d, %d, %d", all[0].ID, all[1].ID, all[2].ID)
	}

	analyses, err := store.ListByType(ctx, "stock-analysis")
	if err != nil {
		t.Fatalf("ListByType: %v", err)
	}
	if len(analyses) != 2 || analyses[0].ID != ids[2] {
		t.Errorf("Unexpected filtered records %+v", analyses)
	}

	none, err := store.ListByType(ctx, "investment-advice")
	if err != nil {
		t.Fatalf("ListByType: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", none)
	}
}

func TestStore_Page(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		typ := "stock-analysis"
		if i%2 == 1 {
			typ = "portfolio-review"
		}
		res, err := store.Save(ctx, validRequest(typ))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, res.ID)
	}

	tests := []struct {
		name       string
		query      PageQuery
		wantIDs    []int64
		wantTotal  int64
		wantPages  int
		wantSize   int
		wantPageNo int
	}{
		{"defaults", PageQuery{}, []int64{ids[4], ids[3], ids[2], ids[1], ids[0]}, 5, 1, DefaultPageSize, 0},
		{"second page", PageQuery{Page: 1, Size: 2}, []int64{ids[2], ids[1]}, 5, 3, 2, 1},
		{"ascending", PageQuery{Size: 2, Sort: SortAsc}, []int64{ids[0], ids[1]}, 5, 3, 2, 0},
		{"filtered", PageQuery{PromptType: "portfolio-review", Size: 10}, []int64{ids[3], ids[1]}, 2, 1, 10, 0},
		{"past the end", PageQuery{Page: 9, Size: 2}, []int64{}, 5, 3, 2, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := store.Page(ctx, tt.query)
			if err != nil {
				t.Fatalf("Page: %v", err)
			}
			if page.TotalItems != tt.wantTotal || page.TotalPages != tt.wantPages {
				t.Errorf("Expected %d items over %d pages, got %d over %d",
					tt.wantTotal, tt.wantPages, page.TotalItems, page.TotalPages)
			}
			if page.PageSize != tt.wantSize || page.CurrentPage != tt.wantPageNo {
				t.Errorf("Expected page %d size %d, got page %d size %d",
					tt.wantPageNo, tt.wantSize, page.CurrentPage, page.PageSize)
			}
			if len(page.Content) != len(tt.wantIDs) {
				t.Fatalf("Expected %d records, got %d", len(tt.wantIDs), len(page.Content))
			}
			for i, id := range tt.wantIDs {
				if page.Content[i].ID != id {
					t.Errorf("Record %d: expected id %d, got %d", i, id, page.Content[i].ID)
				}
			}
		})
	}
}

func TestStore_PageOffsetOutOfRange(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Page(context.Background(), PageQuery{Page: math.MaxInt / 10, Size: 20})
	if !IsValidationError(err) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	offset, err := PageQuery{Page: 3, Size: MaxPageSize + 50}.Offset()
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if offset != 3*MaxPageSize {
		t.Errorf("Expected offset %d with capped size, got %d", 3*MaxPageSize, offset)
	}
}

func TestStore_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if err.Error() != "History record not found: 99" {
		t.Errorf("Unexpected message %q", err.Error())
	}

	if err := store.Delete(ctx, 99); !IsNotFound(err) {
		t.Errorf("Expected ErrNotFound on delete, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	res, err := store.Save(ctx, validRequest("stock-analysis"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, res.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, res.ID); !IsNotFound(err) {
		t.Errorf("Expected record to be gone, got %v", err)
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := map[string]SortOrder{
		"asc":  SortAsc,
		"ASC":  SortAsc,
		"desc": SortDesc,
		"":     SortDesc,
		"up":   SortDesc,
	}
	for in, want := range tests {
		if got := ParseSortOrder(in); got != want {
			t.Errorf("ParseSortOrder(%q): expected %q, got %q", in, want, got)
		}
	}
}
