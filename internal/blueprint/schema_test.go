package blueprint

import "testing"

func TestFlattenRootAndSections(t *testing.T) {
	bp := Blueprint{
		Fields: []Field{
			{ID: "root_a", Type: FieldText},
		},
		Sections: []Section{
			{ID: "s1", Title: "Parties", Fields: []Field{{ID: "party_a", Type: FieldText}, {ID: "party_b", Type: FieldText}}},
			{ID: "s2", Title: "Terms", Fields: []Field{{ID: "term", Type: FieldDate}}},
		},
	}

	fields := Flatten(bp)
	wantOrder := []string{"root_a", "party_a", "party_b", "term"}
	if len(fields) != len(wantOrder) {
		t.Fatalf("expected %d fields, got %d", len(wantOrder), len(fields))
	}
	for i, id := range wantOrder {
		if fields[i].ID != id {
			t.Errorf("field %d: got %q, want %q", i, fields[i].ID, id)
		}
	}
}

func TestFlattenEmptyBlueprint(t *testing.T) {
	if fields := Flatten(Blueprint{}); len(fields) != 0 {
		t.Errorf("expected no fields, got %d", len(fields))
	}
}

func TestDeriveSchemaEmptyFieldsValidatesEmptyAnswers(t *testing.T) {
	schema := DeriveSchema(nil)
	if failures := schema.Validate(map[string]any{}); len(failures) != 0 {
		t.Errorf("expected clean validation, got %v", failures)
	}
	if failures := schema.Validate(nil); len(failures) != 0 {
		t.Errorf("nil answers: expected clean validation, got %v", failures)
	}
}

func TestRequiredTextField(t *testing.T) {
	schema := DeriveSchema([]Field{{ID: "name", Type: FieldText, Required: true}})

	if failures := schema.Validate(map[string]any{}); len(failures) != 1 {
		t.Fatalf("missing required text: expected 1 failure, got %v", failures)
	}
	if failures := schema.Validate(map[string]any{"name": "   "}); len(failures) != 1 {
		t.Fatalf("blank required text: expected 1 failure, got %v", failures)
	}
	if failures := schema.Validate(map[string]any{"name": "Acme"}); len(failures) != 0 {
		t.Fatalf("expected clean validation, got %v", failures)
	}
}

func TestOptionalTextFieldAcceptsAbsence(t *testing.T) {
	schema := DeriveSchema([]Field{{ID: "note", Type: FieldTextarea}})
	if failures := schema.Validate(map[string]any{}); len(failures) != 0 {
		t.Errorf("optional field should accept absence, got %v", failures)
	}
}

func TestEmailFieldShape(t *testing.T) {
	schema := DeriveSchema([]Field{{ID: "email", Type: FieldEmail, Required: true}})

	if failures := schema.Validate(map[string]any{"email": "not-an-email"}); len(failures) != 1 {
		t.Errorf("bad email: expected 1 failure, got %v", failures)
	}
	if failures := schema.Validate(map[string]any{"email": "jo@example.co.uk"}); len(failures) != 0 {
		t.Errorf("good email: expected clean validation, got %v", failures)
	}

	// optional email still checks shape when a value is present
	optional := DeriveSchema([]Field{{ID: "email", Type: FieldEmail}})
	if failures := optional.Validate(map[string]any{"email": "nope"}); len(failures) != 1 {
		t.Errorf("optional bad email: expected 1 failure, got %v", failures)
	}
	if failures := optional.Validate(map[string]any{}); len(failures) != 0 {
		t.Errorf("optional absent email: expected clean validation, got %v", failures)
	}
}

func TestDateFieldIsOpaque(t *testing.T) {
	schema := DeriveSchema([]Field{{ID: "start", Type: FieldDate, Required: true}})
	// presence only, no calendar semantics
	if failures := schema.Validate(map[string]any{"start": "whenever"}); len(failures) != 0 {
		t.Errorf("date value should be opaque, got %v", failures)
	}
	if failures := schema.Validate(map[string]any{}); len(failures) != 1 {
		t.Errorf("missing required date: expected 1 failure, got %v", failures)
	}
}

func TestSelectFieldMustMatchOption(t *testing.T) {
	field := Field{
		ID:       "region",
		Type:     FieldSelect,
		Required: true,
		Options:  []Option{{Label: "England & Wales", Value: "uk-ew"}, {Label: "Scotland", Value: "uk-sc"}},
	}
	schema := DeriveSchema([]Field{field})

	if failures := schema.Validate(map[string]any{"region": "uk-sc"}); len(failures) != 0 {
		t.Errorf("valid option: expected clean validation, got %v", failures)
	}
	if failures := schema.Validate(map[string]any{"region": "fr"}); len(failures) != 1 {
		t.Errorf("unknown option: expected 1 failure, got %v", failures)
	}
	if failures := schema.Validate(map[string]any{}); len(failures) != 1 {
		t.Errorf("missing required select: expected 1 failure, got %v", failures)
	}
}

func TestRequiredCheckbox(t *testing.T) {
	schema := DeriveSchema([]Field{{ID: "agree", Type: FieldCheckbox, Required: true}})

	if failures := schema.Validate(map[string]any{}); len(failures) != 1 {
		t.Errorf("unchecked required checkbox: expected 1 failure, got %v", failures)
	}
	if failures := schema.Validate(map[string]any{"agree": false}); len(failures) != 1 {
		t.Errorf("false required checkbox: expected 1 failure, got %v", failures)
	}
	if failures := schema.Validate(map[string]any{"agree": true}); len(failures) != 0 {
		t.Errorf("checked checkbox: expected clean validation, got %v", failures)
	}
}

func TestNumberField(t *testing.T) {
	schema := DeriveSchema([]Field{{ID: "amount", Type: FieldNumber, Required: true}})

	if failures := schema.Validate(map[string]any{"amount": "12.50"}); len(failures) != 0 {
		t.Errorf("numeric string: expected clean validation, got %v", failures)
	}
	if failures := schema.Validate(map[string]any{"amount": float64(12)}); len(failures) != 0 {
		t.Errorf("float value: expected clean validation, got %v", failures)
	}
	if failures := schema.Validate(map[string]any{"amount": "twelve"}); len(failures) != 1 {
		t.Errorf("non-numeric: expected 1 failure, got %v", failures)
	}
}

func TestUnknownFieldTypeIsAcceptedButFlagged(t *testing.T) {
	schema := DeriveSchema([]Field{
		{ID: "sig", Type: FieldType("signature-pad"), Required: true},
		{ID: "name", Type: FieldText, Required: true},
	})

	unsupported := schema.Unsupported()
	if len(unsupported) != 1 || unsupported[0] != "sig" {
		t.Errorf("expected [sig] flagged unsupported, got %v", unsupported)
	}

	// the unknown field never fails validation, even when required and absent
	failures := schema.Validate(map[string]any{"name": "Acme"})
	if len(failures) != 0 {
		t.Errorf("unknown type must not validate, got %v", failures)
	}
}

func TestWrongValueTypes(t *testing.T) {
	schema := DeriveSchema([]Field{
		{ID: "name", Type: FieldText},
		{ID: "agree", Type: FieldCheckbox},
	})

	failures := schema.Validate(map[string]any{"name": 42, "agree": "yes"})
	if len(failures) != 2 {
		t.Errorf("expected 2 type failures, got %v", failures)
	}
}
