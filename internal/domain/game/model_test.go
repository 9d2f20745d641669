package game

import "testing"

func TestResolveStatusTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		current  Status
		incoming Status
		want     Status
	}{
		{"empty to empty defaults scheduled", "", "", StatusScheduled},
		{"empty adopts incoming", "", StatusLive, StatusLive},
		{"empty incoming keeps current", StatusLive, "", StatusLive},
		{"scheduled to live", StatusScheduled, StatusLive, StatusLive},
		{"scheduled to postponed", StatusScheduled, StatusPostponed, StatusPostponed},
		{"scheduled to final", StatusScheduled, StatusFinal, StatusFinal},
		{"scheduled to canceled", StatusScheduled, StatusCanceled, StatusCanceled},
		{"live to final", StatusLive, StatusFinal, StatusFinal},
		{"live never regresses", StatusLive, StatusScheduled, StatusLive},
		{"live rejects postponed", StatusLive, StatusPostponed, StatusLive},
		{"final sticks", StatusFinal, StatusLive, StatusFinal},
		{"canceled sticks", StatusCanceled, StatusScheduled, StatusCanceled},
		{"postponed rejects scheduled", StatusPostponed, StatusScheduled, StatusPostponed},
		{"postponed rejects live", StatusPostponed, StatusLive, StatusPostponed},
		{"postponed rejects final", StatusPostponed, StatusFinal, StatusPostponed},
		{"final repeat is stable", StatusFinal, StatusFinal, StatusFinal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveStatusTransition(tc.current, tc.incoming); got != tc.want {
				t.Fatalf("resolve(%q, %q): expected %q, got %q", tc.current, tc.incoming, tc.want, got)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	if got, ok := ParseStatus("  Final "); !ok || got != StatusFinal {
		t.Fatalf("expected final, got %q ok=%v", got, ok)
	}
	if _, ok := ParseStatus("halftime"); ok {
		t.Fatal("expected halftime to be rejected")
	}
}
