package report

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Customer Pay:":  "customerpay",
		"  Total  ":      "total",
		"N/A!":           "na",
		"Clock-In Hours": "clockinhours",
		"":               "",
		"  --  ":         "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassifyLabel(t *testing.T) {
	t.Parallel()

	payTypes := DefaultProductivitySpec().PayTypes

	cases := []struct {
		label string
		want  string
		ok    bool
	}{
		{label: "Customer Pay", want: "customer", ok: true},
		{label: "WARRANTY", want: "warranty", ok: true},
		{label: "Internal:", want: "internal", ok: true},
		{label: "Totals", want: "total", ok: true},
		{label: "Internal Total", want: "internal", ok: true},
		{label: "Shop Supplies"},
		{label: ""},
		{label: "  "},
	}
	for _, tc := range cases {
		got, ok := ClassifyLabel(tc.label, payTypes)
		if ok != tc.ok {
			t.Fatalf("ClassifyLabel(%q) ok = %v, want %v", tc.label, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ClassifyLabel(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestClassifyHoursRows(t *testing.T) {
	t.Parallel()

	kinds := DefaultTechHoursSpec().RowKinds

	if got, ok := ClassifyLabel("Sold Hours", kinds); !ok || got != RowSoldHours {
		t.Fatalf("Sold Hours classified as %q (ok=%v)", got, ok)
	}
	if got, ok := ClassifyLabel("Clocked In Hours", kinds); !ok || got != RowClockedHours {
		t.Fatalf("Clocked In Hours classified as %q (ok=%v)", got, ok)
	}
	if got, ok := ClassifyLabel("Flag Hours", kinds); !ok || got != RowSoldHours {
		t.Fatalf("Flag Hours classified as %q (ok=%v)", got, ok)
	}
	if _, ok := ClassifyLabel("Vacation", kinds); ok {
		t.Fatal("Vacation should not classify as an hours row")
	}
}

func TestLooksLikeName(t *testing.T) {
	t.Parallel()

	exclusions := DefaultTechHoursSpec().NameExclusions

	accepted := []string{
		"SMITH, JOHN",
		"Jane Doe",
		"JOHNSON, MIKE #4521",
		"De La Cruz, Ana",
	}
	for _, value := range accepted {
		if !LooksLikeName(value, exclusions) {
			t.Fatalf("expected %q to look like a name", value)
		}
	}

	rejected := []string{
		"",
		"   ",
		"Totals",
		"Department Total",
		"Grand Total",
		"12345",
		"B6",
		"Madonna",
		"Technician Name",
		"Week of 2/2",
		"a very long label that keeps going well past any plausible real name",
	}
	for _, value := range rejected {
		if LooksLikeName(value, exclusions) {
			t.Fatalf("expected %q not to look like a name", value)
		}
	}
}
