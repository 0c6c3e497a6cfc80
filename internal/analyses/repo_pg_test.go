package analyses

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"cutquote-backend/internal/design"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

var analysisCols = []string{
	"id", "file_name", "format", "storage_key", "size_bytes", "status", "error_message", "duration_ms", "created_at",
}

func TestPGRepoCreateStoresItemsAsJSON(t *testing.T) {
	repo, mock := newMockRepo(t)
	analysis := Analysis{
		ID:         "analysis-1",
		FileName:   "sign.svg",
		Format:     design.FormatSVG,
		StorageKey: "analyses/svg/2026/03/14/x_sign.svg",
		SizeBytes:  120,
		Status:     StatusCompleted,
		Items:      []Item{{Result: design.Result{Name: "Design", WidthMM: 200}}},
		DurationMs: 3.5,
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(
			analysis.ID,
			analysis.FileName,
			"svg",
			analysis.StorageKey,
			int64(120),
			StatusCompleted,
			sqlmock.AnyArg(), // items
			[]byte("null"),   // report
			nil,              // error_message
			3.5,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesItemsAndReport(t *testing.T) {
	repo, mock := newMockRepo(t)
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	cols := append(append([]string{}, analysisCols...), "items", "report")
	mock.ExpectQuery("FROM analyses").
		WithArgs("analysis-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"analysis-1", "panel.dxf", "dxf", nil, int64(512), StatusCompleted, nil, 8.0, createdAt,
			[]byte(`[{"name":"Job 1","width_mm":20,"price":50},{"name":"Job 2","width_mm":20}]`),
			[]byte(`{"unit_code":4,"unit_factor":1,"entity_counts":{"CIRCLE":2},"meaningful_entities":2,"boxed_entities":2,"clusters":[]}`),
		))

	a, err := repo.GetByID(context.Background(), "analysis-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a.Format != design.FormatDXF || a.StorageKey != "" || a.SizeBytes != 512 {
		t.Fatalf("unexpected analysis %+v", a)
	}
	if len(a.Items) != 2 || a.Items[0].Price == nil || *a.Items[0].Price != 50 || a.Items[1].Price != nil {
		t.Fatalf("unexpected items %+v", a.Items)
	}
	if a.Report == nil || a.Report.EntityCounts["CIRCLE"] != 2 {
		t.Fatalf("unexpected report %+v", a.Report)
	}
}

func TestPGRepoGetByIDFailedAnalysis(t *testing.T) {
	repo, mock := newMockRepo(t)

	cols := append(append([]string{}, analysisCols...), "items", "report")
	mock.ExpectQuery("FROM analyses").
		WithArgs("analysis-2").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"analysis-2", "broken.svg", "svg", nil, int64(9), StatusFailed, "SVG analysis failed", 0.4, time.Now(),
			[]byte("null"), []byte("null"),
		))

	a, err := repo.GetByID(context.Background(), "analysis-2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a.Status != StatusFailed || a.ErrorMessage != "SVG analysis failed" || a.Items != nil || a.Report != nil {
		t.Fatalf("unexpected analysis %+v", a)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM analyses").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoList(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(int64(2), 0).
		WillReturnRows(sqlmock.NewRows(analysisCols).
			AddRow("b", "b.svg", "svg", "k/b.svg", int64(1), StatusCompleted, nil, 1.0, now).
			AddRow("a", "a.dxf", "dxf", nil, int64(2), StatusFailed, "boom", 2.0, now.Add(-time.Minute)))
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(nil, 0).
		WillReturnRows(sqlmock.NewRows(analysisCols))

	list, err := repo.List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].ErrorMessage != "boom" || list[1].Format != design.FormatDXF {
		t.Fatalf("unexpected list %+v", list)
	}

	list, err = repo.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
