package roster

import (
	"strings"
	"testing"
)

func TestParseEnglishHeaders(t *testing.T) {
	input := "name,phone,affiliation,student_id\nKim,010-1234-5678,CS,20231234\nLee,010-9876-5432,,\n"

	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	entries, err := Entries(records)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if entries[0].Name != "Kim" || entries[0].Phone != "010-1234-5678" || entries[0].Affiliation != "CS" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].StudentID != "" {
		t.Fatalf("expected empty student id, got %q", entries[1].StudentID)
	}
}

func TestParseKoreanHeaders(t *testing.T) {
	input := "소속,학번,이름,전화번호\n컴퓨터공학과,20231234,김철수,010-1234-5678\n"

	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	entries, err := Entries(records)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Name != "김철수" || entries[0].Phone != "010-1234-5678" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
	if entries[0].Affiliation != "컴퓨터공학과" || entries[0].StudentID != "20231234" {
		t.Fatalf("optional fields not mapped: %+v", entries[0])
	}
}

func TestParseSkipsMismatchedRows(t *testing.T) {
	input := "name,phone\nKim,010-1234-5678\nbroken-row\nLee,010-9876-5432\n"

	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected mismatched row to be skipped, got %d records", len(records))
	}
}

func TestEntriesRequiresNameAndPhone(t *testing.T) {
	records := []Record{{FieldName: "Kim"}}
	if _, err := Entries(records); err == nil {
		t.Fatal("expected error for missing phone")
	}
}
