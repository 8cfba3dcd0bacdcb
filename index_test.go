package stockroom

import (
	"context"
	"slices"
	"testing"

	"github.com/etnz/stockroom/date"
	"github.com/google/go-cmp/cmp"
)

var catalogFiles = map[string]string{
	"definitions/parts/r_10k.md": `---
name: Résistance 10k
summary: Thick film resistor
labels: [smd, passive]
attributes:
  package: "0805"
price: 0.02
currency: EUR
---
Use for **pull-ups**.
`,
	"definitions/parts/r_1k.md": `---
name: Resistor 1k
labels: [tht, passive]
attributes:
  package: axial
price: 0.05
currency: EUR
---
`,
	"definitions/parts/arduino.md": `---
name: Arduino Nano
price: 22
currency: USD
---
`,
	"definitions/locations/cabinet.md":     "---\nname: Cabinet\n---\n",
	"definitions/locations/drawer_a.md":    "---\nname: Drawer A\nparent: cabinet\n---\n",
	"definitions/locations/bin_3.md":       "---\nname: Bin 3\nparent: drawer_a\n---\n",
	"definitions/projects/resistor_box.md": "---\nname: Resistor box\n---\n",
}

func ids(defs []*Definition) []string {
	var list []string
	for _, d := range defs {
		list = append(list, d.Ref().String())
	}
	return list
}

func matchIDs(matches []Match) []string {
	var list []string
	for _, m := range matches {
		list = append(list, m.Def.Ref().String())
	}
	return list
}

func TestIndex_Search(t *testing.T) {
	inv := newTestInventory(t, catalogFiles)
	testCases := []struct {
		query string
		want  []string
	}{
		// exact id first, then id prefix, then the others by kind and id.
		{"r_10k", []string{"part:r_10k"}},
		{"resistance", []string{"part:r_10k"}},
		{"RESIST", []string{"project:resistor_box", "part:r_10k", "part:r_1k"}},
		{"passive smd", []string{"part:r_10k"}},
		{"0805", []string{"part:r_10k"}},
		{"pull", []string{"part:r_10k"}},
		{"drawer", []string{"location:drawer_a"}},
		{"  ", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			got := inv.Search(tc.query)
			if diff := cmp.Diff(tc.want, matchIDs(got)); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tc.query, diff)
			}
		})
	}
}

func TestIndex_SearchRanking(t *testing.T) {
	inv := newTestInventory(t, catalogFiles)
	got := inv.Search("resistor")
	// id prefix, then name prefix, then any word.
	if diff := cmp.Diff([]string{"project:resistor_box", "part:r_1k", "part:r_10k"}, matchIDs(got)); diff != "" {
		t.Fatalf("Search() mismatch (-want +got):\n%s", diff)
	}
	if got[0].Score <= got[1].Score || got[1].Score <= got[2].Score {
		t.Errorf("scores = %d, %d, %d; want decreasing", got[0].Score, got[1].Score, got[2].Score)
	}
}

func TestIndex_SearchFuzzy(t *testing.T) {
	inv := newTestInventory(t, catalogFiles)
	got := inv.Search("ardno")
	if len(got) == 0 || got[0].Def.ID != "arduino" || !got[0].Fuzzy {
		t.Errorf("Search(ardno) = %v, want a fuzzy match on arduino", matchIDs(got))
	}
}

func TestIndex_Where(t *testing.T) {
	inv := newTestInventory(t, catalogFiles)
	x := inv.View().Index
	testCases := []struct {
		kind Kind
		expr string
		want []string
	}{
		{KindPart, `$.attributes.package`, []string{"part:r_10k", "part:r_1k"}},
		{KindPart, `$.labels[?(@ == "tht")]`, []string{"part:r_1k"}},
		{KindPart, `$.price > 1`, []string{"part:arduino"}},
		{KindLocation, `$.parent == "cabinet"`, []string{"location:drawer_a"}},
		{"", `$.name`, []string{"part:arduino", "part:r_10k", "part:r_1k", "location:bin_3", "location:cabinet", "location:drawer_a", "project:resistor_box"}},
	}
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := x.Where(context.Background(), tc.kind, tc.expr)
			if err != nil {
				t.Fatalf("Where() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, ids(got)); diff != "" {
				t.Errorf("Where(%s) mismatch (-want +got):\n%s", tc.expr, diff)
			}
		})
	}
	if _, err := x.Where(context.Background(), KindPart, `$.[`); err == nil {
		t.Error("Where() accepted an invalid expression")
	}
}

func TestIndex_Contents(t *testing.T) {
	ctx := context.Background()
	inv := newTestInventory(t, catalogFiles)
	mustRecord(t)(inv.Deliver(ctx, "r_10k", "drawer_a", Q(100), "", ""))
	mustRecord(t)(inv.Deliver(ctx, "r_1k", "bin_3", Q(40), "", ""))
	mustRecord(t)(inv.Deliver(ctx, "arduino", "cabinet", Q(2), "", ""))
	mustRecord(t)(inv.Deliver(ctx, "cap_1u", "bin_3", Q(10), "", ""))
	mustRecord(t)(inv.UseInProject(ctx, "r_1k", "bin_3", "resistor_box", Q(4), ""))

	type row struct{ Part, Location, Qty string }
	rows := func(cs []Content) []row {
		var list []row
		for _, c := range cs {
			list = append(list, row{c.Part.ID, c.Location, c.Qty.String()})
		}
		return list
	}

	if diff := cmp.Diff([]row{{"r_10k", "drawer_a", "100"}}, rows(inv.ListContents("drawer_a", false))); diff != "" {
		t.Errorf("ListContents(drawer_a) mismatch (-want +got):\n%s", diff)
	}
	want := []row{{"cap_1u", "bin_3", "10"}, {"r_10k", "drawer_a", "100"}, {"r_1k", "bin_3", "36"}}
	if diff := cmp.Diff(want, rows(inv.ListContents("drawer_a", true))); diff != "" {
		t.Errorf("ListContents(drawer_a, recursive) mismatch (-want +got):\n%s", diff)
	}

	x := inv.View().Index
	if diff := cmp.Diff([]row{{"r_1k", "resistor_box", "4"}}, rows(x.ListConsumed("resistor_box"))); diff != "" {
		t.Errorf("ListConsumed() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]row{{"r_1k", "bin_3", "36"}}, rows(x.WhereIs("r_1k"))); diff != "" {
		t.Errorf("WhereIs() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cabinet", "drawer_a", "bin_3"}, x.LocationPath("bin_3")); diff != "" {
		t.Errorf("LocationPath() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"part:cap_1u"}, ids(x.Placeholders())); diff != "" {
		t.Errorf("Placeholders() mismatch (-want +got):\n%s", diff)
	}

	values, unpriced := x.Valuation("cabinet", true)
	var got []string
	for _, v := range values {
		got = append(got, v.Currency()+" "+v.Amount().String())
	}
	if diff := cmp.Diff([]string{"EUR 3.8", "USD 44"}, got); diff != "" {
		t.Errorf("Valuation() mismatch (-want +got):\n%s", diff)
	}
	if !slices.Equal(unpriced, []string{"cap_1u"}) {
		t.Errorf("unpriced = %v, want [cap_1u]", unpriced)
	}
}

func TestIndex_ParentCycle(t *testing.T) {
	inv := newTestInventory(t, map[string]string{
		"definitions/locations/a.md": "---\nparent: b\n---\n",
		"definitions/locations/b.md": "---\nparent: a\n---\n",
	})
	mustRecord(t)(inv.Deliver(context.Background(), "r", "a", Q(1), "", ""))
	if got := inv.ListContents("b", true); len(got) != 1 {
		t.Errorf("ListContents() = %v, want one row", got)
	}
	if got := inv.View().Index.LocationPath("a"); len(got) != 2 {
		t.Errorf("LocationPath() = %v", got)
	}
}

func TestIndex_History(t *testing.T) {
	ctx := context.Background()
	inv := newTestInventory(t, catalogFiles)
	mustRecord(t)(inv.Deliver(ctx, "r_10k", "drawer_a", Q(100), "", ""))
	mustRecord(t)(inv.Move(ctx, "r_10k", "drawer_a", "bin_3", Q(10), ""))
	mustRecord(t)(inv.Deliver(ctx, "r_1k", "bin_3", Q(5), "", ""))

	if got := inv.History(Location("bin_3"), date.Range{}); len(got) != 2 {
		t.Errorf("History(bin_3) = %v, want 2 entries", got)
	}
	if got := inv.History(Part("r_10k"), date.Range{}); len(got) != 2 || got[0].Action != ActDeliver {
		t.Errorf("History(r_10k) = %v", got)
	}
	r := date.Range{From: date.MustParse("2025-03-02")}
	if got := inv.History(Part("r_10k"), r); len(got) != 0 {
		t.Errorf("History(r_10k, %v) = %v, want none", r, got)
	}
}

func TestNewIndex_Maps(t *testing.T) {
	ctx := context.Background()
	inv := newTestInventory(t, catalogFiles)
	mustRecord(t)(inv.Deliver(ctx, "r_10k", "drawer_a", Q(100), "", ""))
	mustRecord(t)(inv.Move(ctx, "r_10k", "drawer_a", "bin_3", Q(30), ""))
	mustRecord(t)(inv.Deliver(ctx, "r_1k", "bin_3", Q(5), "", ""))
	if err := inv.Rescan(ctx); err != nil {
		t.Fatal(err)
	}
	x := inv.View().Index

	if diff := cmp.Diff([]Ref{Part("r_10k"), Part("r_1k")}, x.postings["passive"]); diff != "" {
		t.Errorf("postings[passive] mismatch (-want +got):\n%s", diff)
	}
	if !slices.IsSorted(x.words) {
		t.Errorf("words are not sorted: %v", x.words)
	}
	for word, refs := range map[string][]Ref{"res": {Part("r_10k"), Part("r_1k"), Project("resistor_box")}, "zzz": nil} {
		var got []Ref
		for r := range x.withPrefix(word) {
			got = append(got, r)
		}
		slices.SortFunc(got, compareRef)
		slices.SortFunc(refs, compareRef)
		if diff := cmp.Diff(refs, got); diff != "" {
			t.Errorf("withPrefix(%q) mismatch (-want +got):\n%s", word, diff)
		}
	}

	held := func(cs []Content) []string {
		var list []string
		for _, c := range cs {
			list = append(list, c.Part.ID+"@"+c.Location+"="+c.Qty.String())
		}
		return list
	}
	if diff := cmp.Diff([]string{"r_10k@bin_3=30", "r_1k@bin_3=5"}, held(x.held["bin_3"])); diff != "" {
		t.Errorf("held[bin_3] mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"r_10k@bin_3=30", "r_10k@drawer_a=70"}, held(x.holders["r_10k"])); diff != "" {
		t.Errorf("holders[r_10k] mismatch (-want +got):\n%s", diff)
	}
	// results are copies: callers cannot alter the index.
	x.WhereIs("r_10k")[0].Location = "moon"
	if x.holders["r_10k"][0].Location != "bin_3" {
		t.Error("WhereIs() returned the index's own slice")
	}
}
