package storage

import (
	"strings"
	"testing"

	"TrialsLoader/internal/domain"
)

func TestDocumentExpr(t *testing.T) {
	t.Parallel()

	sections := []domain.SearchSection{
		{Weight: "A", Text: "title text"},
		{Weight: "D", Text: "description text"},
	}

	expr, args, err := documentExpr(sections)
	if err != nil {
		t.Fatalf("documentExpr error: %v", err)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if strings.Count(expr, "setweight") != 2 {
		t.Fatalf("expected 2 setweight terms: %s", expr)
	}
	if !strings.Contains(expr, "'A'") || !strings.Contains(expr, "'D'") {
		t.Fatalf("weights missing from expression: %s", expr)
	}
	if !strings.Contains(expr, " || ") {
		t.Fatalf("terms not concatenated: %s", expr)
	}
}

func TestDocumentExprEmpty(t *testing.T) {
	t.Parallel()

	expr, args, err := documentExpr(nil)
	if err != nil {
		t.Fatalf("documentExpr error: %v", err)
	}
	if expr != "''::tsvector" || len(args) != 0 {
		t.Fatalf("unexpected empty expression %q %v", expr, args)
	}
}

func TestDocumentExprRejectsBadWeight(t *testing.T) {
	t.Parallel()

	_, _, err := documentExpr([]domain.SearchSection{{Weight: "'; DROP TABLE", Text: "x"}})
	if err == nil {
		t.Fatal("expected error for an invalid weight label")
	}
}

func TestDateColumns(t *testing.T) {
	t.Parallel()

	date, precision := dateColumns(nil)
	if date != nil || precision != nil {
		t.Fatalf("nil date should map to NULL columns, got %v %v", date, precision)
	}

	_, precision = dateColumns(&domain.DateValue{Year: 2020, Month: 5, Precision: domain.PrecisionMonth})
	if precision != "month" {
		t.Fatalf("unexpected precision column %v", precision)
	}
}

func TestTextArrayNilEncodesAsEmptyArray(t *testing.T) {
	t.Parallel()

	value, err := textArray(nil).Value()
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if value == nil {
		t.Fatal("nil slice must encode as an empty array, not SQL NULL")
	}
	if s, ok := value.(string); !ok || s != "{}" {
		t.Fatalf("unexpected encoding %v", value)
	}

	value, err = textArray([]string{"Diabetes"}).Value()
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if s, ok := value.(string); !ok || s != `{"Diabetes"}` {
		t.Fatalf("unexpected encoding %v", value)
	}
}

func TestMarshalInterventionsEmpty(t *testing.T) {
	t.Parallel()

	b, err := marshalInterventions(nil)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(b) != "[]" {
		t.Fatalf("nil interventions should marshal to an empty array, got %s", b)
	}
}
