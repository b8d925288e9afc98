package export

import (
	"testing"

	"je-feed-v2/internal/model"
)

func exportable(id string) *model.Record {
	return &model.Record{
		ExternalID:  id,
		Status:      model.StatusActive,
		Title:       "1969 Ford Mustang",
		Brand:       "Ford",
		Model:       "Mustang",
		Year:        "1969",
		Images:      []string{"http://x/1.jpg"},
		Location:    model.Location{Country: "United States"},
		JEReference: "je-" + id,
	}
}

func TestSelectMissingYearExcluded(t *testing.T) {
	rec := exportable("JE-1")
	rec.Year = ""
	rec.Title = "Ford Mustang Fastback" // no derivable year either
	got := Select(model.Inventory{"JE-1": rec})
	if len(got) != 0 {
		t.Fatalf("record without year exported: %+v", got)
	}
}

func TestSelectYearDerivedFromTitle(t *testing.T) {
	rec := exportable("JE-1")
	rec.Year = ""
	rec.Title = "1969 Ford Mustang"
	got := Select(model.Inventory{"JE-1": rec})
	if len(got) != 1 || got[0].Year != "1969" {
		t.Fatalf("expected year derived from title, got %+v", got)
	}
}

func TestSelectModelFallsBackToBrand(t *testing.T) {
	rec := exportable("JE-1")
	rec.Model = ""
	rec.Title = "" // block title derivation
	got := Select(model.Inventory{"JE-1": rec})
	if len(got) != 1 {
		t.Fatalf("record with brand but no model skipped")
	}
	if got[0].Model != "Ford" {
		t.Fatalf("model = %q, want brand fallback Ford", got[0].Model)
	}
}

func TestSelectNoBrandNoModelExcluded(t *testing.T) {
	rec := exportable("JE-1")
	rec.Brand = ""
	rec.Model = ""
	rec.Title = ""
	got := Select(model.Inventory{"JE-1": rec})
	if len(got) != 0 {
		t.Fatalf("record without brand or model exported: %+v", got)
	}
}

func TestSelectNoImagesExcluded(t *testing.T) {
	rec := exportable("JE-1")
	rec.Images = nil
	got := Select(model.Inventory{"JE-1": rec})
	if len(got) != 0 {
		t.Fatalf("record without images exported")
	}

	rec.Images = []string{"relative/path.jpg"}
	got = Select(model.Inventory{"JE-1": rec})
	if len(got) != 0 {
		t.Fatalf("record with only relative image URLs exported")
	}
}

func TestSelectFallsBackToRawShadow(t *testing.T) {
	rec := exportable("JE-1")
	rec.Brand = ""
	rec.Model = ""
	rec.Year = ""
	rec.Title = ""
	rec.Raw = map[string]any{
		"title": "1972 BMW 2002tii",
		"brand": "BMW",
		"model": "2002tii",
		"year":  "1972",
	}
	got := Select(model.Inventory{"JE-1": rec})
	if len(got) != 1 {
		t.Fatalf("raw shadow fallback failed")
	}
	if got[0].Brand != "BMW" || got[0].Model != "2002tii" || got[0].Year != "1972" {
		t.Fatalf("unexpected fallback values: %+v", got[0])
	}
}

func TestSelectDefaultCountry(t *testing.T) {
	rec := exportable("JE-1")
	rec.Location = model.Location{}
	got := Select(model.Inventory{"JE-1": rec})
	if len(got) != 1 || got[0].Location.Country != DefaultCountry {
		t.Fatalf("expected default country, got %+v", got)
	}
}

func TestSelectDeterministicOrder(t *testing.T) {
	inv := model.Inventory{
		"JE-C": exportable("JE-C"),
		"JE-A": exportable("JE-A"),
		"JE-B": exportable("JE-B"),
	}
	got := Select(inv)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, want := range []string{"JE-A", "JE-B", "JE-C"} {
		if got[i].ExternalID != want {
			t.Fatalf("order[%d] = %s, want %s", i, got[i].ExternalID, want)
		}
	}
}

func TestSelectExclusionDoesNotMutateStore(t *testing.T) {
	rec := exportable("JE-1")
	rec.Year = ""
	rec.Title = "Ford Mustang"
	inv := model.Inventory{"JE-1": rec}
	_ = Select(inv)
	if inv["JE-1"].Year != "" || inv["JE-1"].Title != "Ford Mustang" {
		t.Fatalf("filter mutated the stored record: %+v", inv["JE-1"])
	}
	if _, still := inv["JE-1"]; !still {
		t.Fatalf("filter removed the record from the store")
	}
}

func TestSelectInactiveExcluded(t *testing.T) {
	rec := exportable("JE-1")
	rec.Status = "retired"
	got := Select(model.Inventory{"JE-1": rec})
	if len(got) != 0 {
		t.Fatalf("non-active record exported")
	}
}
