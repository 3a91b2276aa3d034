package utils

import "testing"

func TestFingerprint(t *testing.T) {
	got := Fingerprint("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if Fingerprint("abd") == got {
		t.Fatal("different inputs must not share a fingerprint")
	}
}
