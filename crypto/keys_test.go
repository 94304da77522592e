package crypto

import (
	"strings"
	"testing"
)

func TestIdentityRoundTrip(t *testing.T) {
	var id [20]byte
	for i := range id {
		id[i] = byte(i + 1)
	}
	encoded := FormatIdentity(id)
	if !strings.HasPrefix(encoded, "tip1") {
		t.Fatalf("unexpected prefix: %s", encoded)
	}
	decoded, err := ParseIdentity(encoded)
	if err != nil {
		t.Fatalf("parse identity: %v", err)
	}
	if decoded != id {
		t.Fatalf("round trip mismatch: %x != %x", decoded, id)
	}
}

func TestParseIdentityHex(t *testing.T) {
	id, err := ParseIdentity("0x00000000000000000000000000000000000000ff")
	if err != nil {
		t.Fatalf("parse hex identity: %v", err)
	}
	if id[19] != 0xff {
		t.Fatalf("unexpected identity %x", id)
	}
	if _, err := ParseIdentity("0x1234"); err == nil {
		t.Fatalf("expected short hex identity to fail")
	}
	if _, err := ParseIdentity(""); err == nil {
		t.Fatalf("expected empty identity to fail")
	}
}

func TestGeneratedKeyAddress(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore key: %v", err)
	}
	if key.PubKey().Address().String() != restored.PubKey().Address().String() {
		t.Fatalf("restored key derived a different address")
	}
}

func TestDeriveAddressDeterministic(t *testing.T) {
	owner := []byte{1, 2, 3}
	if DeriveAddress("vault", owner) != DeriveAddress("vault", owner) {
		t.Fatalf("derivation must be deterministic")
	}
	if DeriveAddress("vault", owner) == DeriveAddress("profile", owner) {
		t.Fatalf("namespaces must separate addresses")
	}
}

func TestDeriveAddressSegmentsDoNotCollide(t *testing.T) {
	a := DeriveAddress("rate_limit", []byte("ab"), []byte("c"))
	b := DeriveAddress("rate_limit", []byte("a"), []byte("bc"))
	if a == b {
		t.Fatalf("segment boundaries must be part of the address")
	}
	c := DeriveAddress("goal", Uint64Bytes(1))
	d := DeriveAddress("goal", Uint64Bytes(256))
	if c == d {
		t.Fatalf("numeric ids must derive distinct addresses")
	}
}
