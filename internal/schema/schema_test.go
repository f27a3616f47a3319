package schema

import (
	"strings"
	"testing"
)

const testSchemaJSON = `{
	"type": "object",
	"properties": {
		"Arbeitszeit": {
			"type": "string",
			"enum": ["Vollzeit", "Teilzeit"]
		},
		"Arbeitsbereich": {
			"type": "array",
			"items": {"type": "string", "enum": ["IT & Technik", "Lager & Logistik"]}
		},
		"Tätigkeitsprofil": {
			"type": "string"
		},
		"Schlüsselkompetenzen": {
			"type": "array",
			"items": {"type": "string"}
		}
	},
	"required": ["Arbeitszeit", "Arbeitsbereich", "Tätigkeitsprofil"]
}`

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Parse([]byte(testSchemaJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func validMetadata() map[string]any {
	return map[string]any{
		"Arbeitszeit":      "Vollzeit",
		"Arbeitsbereich":   []any{"IT & Technik"},
		"Tätigkeitsprofil": "- entwickelt\n- testet\n- dokumentiert",
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("{broken")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParse_NoProperties(t *testing.T) {
	if _, err := Parse([]byte(`{"type":"object","properties":{}}`)); err == nil {
		t.Fatal("expected error for schema without properties")
	}
}

func TestJSON_ReturnsCompactedDocument(t *testing.T) {
	s := testSchema(t)
	raw := s.JSON()
	if strings.Contains(raw, "\n") {
		t.Error("expected compacted JSON without newlines")
	}
	if !strings.Contains(raw, `"Arbeitszeit"`) {
		t.Errorf("compacted schema is missing fields: %s", raw)
	}
}

func TestValidate_ConformingObject(t *testing.T) {
	s := testSchema(t)
	if err := s.Validate(validMetadata()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_OptionalFieldMayBeAbsent(t *testing.T) {
	s := testSchema(t)
	// Schlüsselkompetenzen is not in required.
	if err := s.Validate(validMetadata()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UndeclaredField(t *testing.T) {
	s := testSchema(t)
	md := validMetadata()
	md["Gehalt"] = "40000"

	err := s.Validate(md)
	if err == nil {
		t.Fatal("expected error for undeclared field")
	}
	if !strings.Contains(err.Error(), "Gehalt") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestValidate_MissingRequiredField(t *testing.T) {
	s := testSchema(t)
	md := validMetadata()
	delete(md, "Arbeitszeit")

	err := s.Validate(md)
	if err == nil {
		t.Fatal("expected error for missing required field")
	}
	if !strings.Contains(err.Error(), "Arbeitszeit") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestValidate_OutOfEnumScalar(t *testing.T) {
	s := testSchema(t)
	md := validMetadata()
	md["Arbeitszeit"] = "Nachtschicht"

	if err := s.Validate(md); err == nil {
		t.Fatal("expected error for out-of-enum value")
	}
}

func TestValidate_OutOfEnumArrayItem(t *testing.T) {
	s := testSchema(t)
	md := validMetadata()
	md["Arbeitsbereich"] = []any{"IT & Technik", "Raumfahrt"}

	if err := s.Validate(md); err == nil {
		t.Fatal("expected error for out-of-enum array item")
	}
}

func TestValidate_EmptyStringIsUnknownSentinel(t *testing.T) {
	s := testSchema(t)
	md := validMetadata()
	md["Arbeitszeit"] = ""

	if err := s.Validate(md); err != nil {
		t.Fatalf("empty sentinel should pass enum check: %v", err)
	}
}

func TestValidate_WrongType(t *testing.T) {
	s := testSchema(t)

	md := validMetadata()
	md["Arbeitszeit"] = 40
	if err := s.Validate(md); err == nil {
		t.Fatal("expected error for number in string field")
	}

	md = validMetadata()
	md["Arbeitsbereich"] = "IT & Technik"
	if err := s.Validate(md); err == nil {
		t.Fatal("expected error for scalar in array field")
	}
}

func TestValidate_NullField(t *testing.T) {
	s := testSchema(t)
	md := validMetadata()
	md["Tätigkeitsprofil"] = nil

	if err := s.Validate(md); err == nil {
		t.Fatal("expected error for null field")
	}
}

func TestValidate_FreeStringArrayItems(t *testing.T) {
	s := testSchema(t)
	md := validMetadata()
	md["Schlüsselkompetenzen"] = []any{"Teamfähigkeit", "Sorgfalt"}

	if err := s.Validate(md); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
