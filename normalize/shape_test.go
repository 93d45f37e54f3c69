package normalize

import "testing"

func mustParse(t *testing.T, raw string) any {
	t.Helper()
	v, err := parseJSON(raw)
	if err != nil {
		t.Fatalf("parseJSON(%q) failed: %v", raw, err)
	}
	return v
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Shape
	}{
		{`[{"title":"a"}]`, ShapeList},
		{`[]`, ShapeList},
		{`{"cards":[]}`, ShapeWrappedCards},
		{`{"flashcards":[{"term":"x"}]}`, ShapeWrappedCards},
		{`{"wrapper":[]}`, ShapeWrappedCards},
		{`{"cards":"text"}`, ShapeKeyValueMap},
		{`{"a":1}`, ShapeKeyValueMap},
		{`"text"`, ShapeNotStructured},
		{`12`, ShapeNotStructured},
		{`null`, ShapeNotStructured},
	}

	for _, tt := range tests {
		if got := Classify(mustParse(t, tt.raw)); got != tt.want {
			t.Errorf("Classify(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestClassifyItem(t *testing.T) {
	tests := []struct {
		raw  string
		want ItemShape
	}{
		{`{"title":"a","content":"b"}`, ItemTitleContent},
		{`{"description":"only"}`, ItemTitleContent},
		{`{"title":"a","term":"b"}`, ItemTitleContent},
		{`{"term":"a","definition":"b"}`, ItemTermDefinition},
		{`{"question":"q","answer":"a","extra":1}`, ItemTermDefinition},
		{`{"word":"w"}`, ItemTermDefinition},
		{`{"Mitochondria":"powerhouse"}`, ItemSingleKey},
		{`{"title":null}`, ItemSingleKey},
		{`{"a":1,"b":2}`, ItemUnknown},
		{`{}`, ItemUnknown},
		{`"plain"`, ItemUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyItem(mustParse(t, tt.raw)); got != tt.want {
			t.Errorf("ClassifyItem(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseJSON_RejectsTrailingData(t *testing.T) {
	if _, err := parseJSON(`{"a":1} {"b":2}`); err == nil {
		t.Error("parseJSON() should reject a second top-level value")
	}
}

func TestStringify(t *testing.T) {
	v := mustParse(t, `{"b":[],"a":{},"n":null,"s":"x\"y"}`)
	want := "{\n  \"b\": [],\n  \"a\": {},\n  \"n\": null,\n  \"s\": \"x\\\"y\"\n}"
	if got := stringify(v); got != want {
		t.Errorf("stringify() = %q, want %q", got, want)
	}
}
