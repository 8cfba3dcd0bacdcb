package stockroom

import "testing"

func TestParseRef(t *testing.T) {
	testCases := []struct {
		in      string
		want    Ref
		wantErr bool
	}{
		{in: "r_10k", want: Part("r_10k")},
		{in: "part:r_10k", want: Part("r_10k")},
		{in: "locations:drawer_a", want: Location("drawer_a")},
		{in: "Project:clock", want: Project("clock")},
		{in: "source:shop", want: Source("shop")},
		{in: "shelf:a", wantErr: true},
		{in: "location:", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRef(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseRef(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseRef(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNameToID(t *testing.T) {
	testCases := []struct {
		name, want string
	}{
		{"Resistor 10k / 0805", "resistor_10k_0805"},
		{"  Drawer A  ", "drawer_a"},
		{"m3.screw__12mm", "m3_screw_12mm"},
		{"already_an_id", "already_an_id"},
	}
	for _, tc := range testCases {
		if got := NameToID(tc.name); got != tc.want {
			t.Errorf("NameToID(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRefString(t *testing.T) {
	if got, want := Location("bin_3").String(), "location:bin_3"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !(Ref{Kind: KindPart}).IsZero() {
		t.Error("a ref without id should be zero")
	}
}
