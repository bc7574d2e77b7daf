package strings

import "testing"

func TestIfEmpty(t *testing.T) {
	t.Parallel()

	// non-empty slice should be returned as-is
	in := []string{"GET", "POST"}
	def := []string{"OPTIONS"}
	got := IfEmpty(in, def)
	if len(got) != 2 || got[0] != "GET" {
		t.Fatalf("IfEmpty returned wrong slice: %#v", got)
	}

	// empty slice should fall back to default
	var empty []string
	def2 := []string{"X-Api-Key"}
	got2 := IfEmpty(empty, def2)
	if len(got2) != 1 || got2[0] != "X-Api-Key" {
		t.Fatalf("IfEmpty did not return default: %#v", got2)
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	cases := []struct {
		s, sub string
		want   bool
	}{
		{"BPNL000000000001", "BPNL", true},  // prefix
		{"BPNL000000000001", "0001", true},  // suffix
		{"edr_cache", "_", true},            // mid substring
		{"edr_cache", "", true},             // empty always true
		{"edr_cache", "audit", false},       // not present
		{"edr", "edr_cache_events", false},  // sub longer than s
	}

	for _, c := range cases {
		if got := Contains(c.s, c.sub); got != c.want {
			t.Errorf("Contains(%q,%q)=%v want %v", c.s, c.sub, got, c.want)
		}
	}
}

func TestMustString(t *testing.T) {
	if got := MustString("edr", "name"); got != "edr" {
		t.Fatalf("want edr got %q", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("want panic for empty name")
		}
	}()
	_ = MustString("   ", "name")
}

func TestMustPrefix(t *testing.T) {
	cases := map[string]string{
		"/edr/":     "/edr",
		" meta  ":   "/meta",
		"//audit//": "/audit",
		"/":         "", // should panic
		"":          "", // should panic
	}
	for in, want := range cases {
		if want == "" {
			func() {
				defer func() {
					if recover() == nil {
						t.Fatalf("want panic for %q", in)
					}
				}()
				_ = MustPrefix(in)
			}()
			continue
		}
		if got := MustPrefix(in); got != want {
			t.Fatalf("in %q want %q got %q", in, want, got)
		}
	}
}
