package merge

import (
	"reflect"
	"testing"

	"je-feed-v2/internal/model"
)

func TestStringPrefersNewUnlessEmpty(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want string
	}{
		{"new wins", "old", "new", "new"},
		{"empty new keeps old", "old", "", "old"},
		{"whitespace new keeps old", "old", "   ", "old"},
		{"both empty", "", "", ""},
		{"empty old takes new", "", "new", "new"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.old, tt.new); got != tt.want {
				t.Fatalf("String(%q, %q) = %q, want %q", tt.old, tt.new, got, tt.want)
			}
		})
	}
}

func TestStringNeverErasesNonEmptyOld(t *testing.T) {
	// Monotonicity: a non-empty old value can never become empty.
	for _, newVal := range []string{"", " ", "\t", "x"} {
		if got := String("known", newVal); got == "" {
			t.Fatalf("String(%q, %q) erased a known value", "known", newVal)
		}
	}
}

func TestChooseEmptyShapes(t *testing.T) {
	tests := []struct {
		name string
		old  any
		new  any
		want any
	}{
		{"nil new keeps old", "old", nil, "old"},
		{"empty list keeps old", []any{"a"}, []any{}, []any{"a"}},
		{"empty map keeps old", map[string]any{"k": "v"}, map[string]any{}, map[string]any{"k": "v"}},
		{"non-empty list wins", []any{"a"}, []any{"b"}, []any{"b"}},
		{"number wins", nil, 42, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Choose(tt.old, tt.new); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Choose(%v, %v) = %v, want %v", tt.old, tt.new, got, tt.want)
			}
		})
	}
}

func TestImagesRetention(t *testing.T) {
	a := "http://x/1.jpg"
	b := "http://x/2.jpg"

	if got := Images([]string{a, b}, nil, MaxImages); !reflect.DeepEqual(got, []string{a, b}) {
		t.Fatalf("empty new gallery shrank the old one: %v", got)
	}
	if got := Images([]string{a}, []string{b, a}, MaxImages); !reflect.DeepEqual(got, []string{a, b}) {
		t.Fatalf("expected old order preserved with new appended, got %v", got)
	}
}

func TestImagesFiltersRelativeURLs(t *testing.T) {
	got := Images(nil, []string{"/relative/1.jpg", "http://x/1.jpg"}, MaxImages)
	if !reflect.DeepEqual(got, []string{"http://x/1.jpg"}) {
		t.Fatalf("expected relative URLs dropped, got %v", got)
	}
}

func TestImagesCap(t *testing.T) {
	var old []string
	for i := 0; i < 50; i++ {
		old = append(old, "http://x/"+string(rune('a'+i%26))+".jpg")
	}
	got := Images(old, []string{"http://y/extra.jpg"}, 5)
	if len(got) != 5 {
		t.Fatalf("expected cap of 5, got %d entries", len(got))
	}
}

func TestLocationMergesPerKey(t *testing.T) {
	old := model.Location{Country: "US", City: "Portland"}
	new := model.Location{Region: "OR", City: ""}
	got := Location(old, new)
	want := model.Location{Country: "US", Region: "OR", City: "Portland"}
	if got != want {
		t.Fatalf("Location merge = %+v, want %+v", got, want)
	}
}

func TestRawUnionMerge(t *testing.T) {
	old := map[string]any{"vin": "ABC123", "mileage": "42000"}
	new := model.Scraped{"mileage": "", "transmission": "manual"}
	got := Raw(old, new)

	if got["vin"] != "ABC123" {
		t.Fatalf("old-only key lost: %v", got)
	}
	if got["mileage"] != "42000" {
		t.Fatalf("empty new overwrote old: %v", got)
	}
	if got["transmission"] != "manual" {
		t.Fatalf("new key missing: %v", got)
	}
}
