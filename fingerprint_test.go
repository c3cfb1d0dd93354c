package minigql

import (
	"encoding/json"
	"testing"
)

func TestFingerprintGolden(t *testing.T) {
	// The serialized body for query "{ bla }" with no variables. The constant
	// pins the hash across releases and platforms: snapshots produced
	// elsewhere must stay loadable here.
	body, err := json.Marshal(requestBody{Query: "{ bla }"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if string(body) != `{"query":"{ bla }"}` {
		t.Fatalf("unexpected serialized body: %s", body)
	}

	if got := Fingerprint(string(body)); got != "2421565178" {
		t.Errorf("Fingerprint(%s) = %q, want %q", body, got, "2421565178")
	}
}

func TestFingerprintDeterminism(t *testing.T) {
	inputs := []string{
		`{"query":"{ bla }"}`,
		`{"query":"query Q($id:ID!){node(id:$id){id}}","variables":{"id":"42"}}`,
		"a",
		"åäö non-ascii",
	}

	for _, in := range inputs {
		first := Fingerprint(in)
		for i := 0; i < 10; i++ {
			if got := Fingerprint(in); got != first {
				t.Fatalf("Fingerprint(%q) unstable: %q vs %q", in, got, first)
			}
		}
		if first == "" {
			t.Errorf("Fingerprint(%q) = empty, want non-empty", in)
		}
	}
}

func TestFingerprintDistinguishesBodies(t *testing.T) {
	a := Fingerprint(`{"query":"{ a }"}`)
	b := Fingerprint(`{"query":"{ b }"}`)
	if a == b {
		t.Errorf("expected distinct fingerprints, both %q", a)
	}
}

func TestFingerprintEmptyInput(t *testing.T) {
	if got := Fingerprint(""); got != "" {
		t.Errorf("Fingerprint(\"\") = %q, want empty sentinel", got)
	}
}
