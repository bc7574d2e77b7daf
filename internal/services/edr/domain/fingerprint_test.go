package domain

import "testing"

func TestFingerprint_StableAcrossOfferIDChurn(t *testing.T) {
	t.Parallel()

	perm := map[string]any{"odrl:action": "use"}
	a := map[string]any{"@id": "offer-aaaa", "@type": "odrl:Offer", "odrl:permission": perm}
	b := map[string]any{"@id": "offer-bbbb", "@type": "odrl:Offer", "odrl:permission": perm}

	fa, fb := Fingerprint(a), Fingerprint(b)
	if fa == "" || fa != fb {
		t.Fatalf("fingerprint must ignore volatile ids: %q vs %q", fa, fb)
	}
	if len(fa) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(fa))
	}
}

func TestFingerprint_DetectsPolicyChange(t *testing.T) {
	t.Parallel()

	a := map[string]any{"odrl:permission": map[string]any{"odrl:action": "use"}}
	b := map[string]any{"odrl:permission": map[string]any{"odrl:action": "distribute"}}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("different policies must not collide")
	}
}

func TestFingerprint_Empty(t *testing.T) {
	t.Parallel()

	if got := Fingerprint(nil); got != "" {
		t.Fatalf("nil policy should have empty fingerprint, got %q", got)
	}
	if got := Fingerprint(map[string]any{}); got != "" {
		t.Fatalf("empty policy should have empty fingerprint, got %q", got)
	}
}
