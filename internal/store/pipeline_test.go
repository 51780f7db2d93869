package store

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestUpsertPipelineItemRejectsNegativePosition(t *testing.T) {
	st, mock := newMockStore(t)

	err := st.UpsertPipelineItem(context.Background(), "user-1", "job-1", ColumnApplied, -1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertPipelineItemInserts(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO pipeline_items`).
		WithArgs(sqlmock.AnyArg(), "user-1", "job-1", "wishlist", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.UpsertPipelineItem(context.Background(), "user-1", "job-1", ColumnWishlist, 3); err != nil {
		t.Fatalf("UpsertPipelineItem: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReorderPipelineLengthMismatch(t *testing.T) {
	st, mock := newMockStore(t)

	err := st.ReorderPipeline(context.Background(), "user-1", []string{"a", "b"}, []int{1})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument got %v", err)
	}
	// a malformed batch must never open a transaction
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReorderPipelineRollsBackOnUnknownItem(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pipeline_items SET position = \$1`).
		WithArgs(0, "item-a", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE pipeline_items SET position = \$1`).
		WithArgs(1, "item-b", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := st.ReorderPipeline(context.Background(), "user-1", []string{"item-a", "item-b"}, []int{0, 1})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReorderPipelineCommitsBatch(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pipeline_items SET position = \$1`).
		WithArgs(2, "item-a", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE pipeline_items SET position = \$1`).
		WithArgs(0, "item-b", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := st.ReorderPipeline(context.Background(), "user-1", []string{"item-a", "item-b"}, []int{2, 0}); err != nil {
		t.Fatalf("ReorderPipeline: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListPipelineResolvesJobs(t *testing.T) {
	st, mock := newMockStore(t)

	published := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	cols := []string{
		"id", "job_id", "column_name", "position", "created_at", "updated_at",
		"jid", "source", "title", "company", "description", "location", "work_type",
		"salary_min", "salary_max", "url", "published_at", "fit_score",
	}
	mock.ExpectQuery(`FROM pipeline_items p\s+JOIN jobs j ON j.id = p.job_id`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("item-1", "job-1", "applied", 0, now, now,
				"job-1", "linkedin", "Go Engineer", "Acme", "d", nil, nil, nil, nil, "u", published, 55.0))

	items, err := st.ListPipeline(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListPipeline: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	it := items[0]
	if it.Column != ColumnApplied || it.Job.ID != "job-1" || it.Job.Title != "Go Engineer" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestParsePipelineColumn(t *testing.T) {
	for _, valid := range []string{"wishlist", "applied", "interview", "offer"} {
		if _, err := ParsePipelineColumn(valid); err != nil {
			t.Fatalf("ParsePipelineColumn(%q): %v", valid, err)
		}
	}
	if _, err := ParsePipelineColumn("archived"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument got %v", err)
	}
}
