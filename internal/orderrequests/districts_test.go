package orderrequests

import "testing"

func TestResolveDistrict(t *testing.T) {
	cases := []struct {
		name     string
		hub      string
		explicit string
		want     string
	}{
		{name: "explicit district wins", hub: "Kumily Cardamom Hub", explicit: "Wayanad", want: "Wayanad"},
		{name: "known hub resolves", hub: "Kumily Cardamom Hub", want: "Idukki"},
		{name: "match is case-insensitive", hub: "  WAYANAD COFFEE HUB ", want: "Wayanad"},
		{name: "unknown hub is unassigned", hub: "Roadside Stall", want: UnassignedDistrict},
		{name: "empty hub is unassigned", want: UnassignedDistrict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveDistrict(tc.hub, tc.explicit); got != tc.want {
				t.Fatalf("ResolveDistrict(%q, %q) = %q, want %q", tc.hub, tc.explicit, got, tc.want)
			}
		})
	}
}
