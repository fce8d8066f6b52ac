package hash

import (
	"crypto/sha256"
	"encoding/json"
	"testing"
)

func TestConcatOrdered(t *testing.T) {
	a := FromString("a")
	b := FromString("b")

	ab := Concat(a, b)
	ba := Concat(b, a)

	if ab.Equal(ba) {
		t.Fatalf("Concat must depend on argument order")
	}
	if !ab.Equal(Concat(a, b)) {
		t.Fatalf("Concat must be deterministic")
	}

	data := make([]byte, 0, Size*2)
	data = append(data, a[:]...)
	data = append(data, b[:]...)
	want := Hash(sha256.Sum256(data))
	if !ab.Equal(want) {
		t.Fatalf("got %s, want %s", ab, want)
	}
}

func TestXor(t *testing.T) {
	a := FromString("a")
	b := FromString("b")

	if !a.Xor(b).Equal(b.Xor(a)) {
		t.Fatalf("Xor must be commutative")
	}
	if !a.Xor(b).Xor(b).Equal(a) {
		t.Fatalf("Xor must be self inverse")
	}
	if !a.Xor(Hash{}).Equal(a) {
		t.Fatalf("Xor with zero must be identity")
	}
}

func TestFromHex(t *testing.T) {
	h := FromString("round trip")

	decoded, err := FromHex(h.String())
	if err != nil {
		t.Fatalf("Failed to decode hex : %v", err)
	}
	if !decoded.Equal(h) {
		t.Fatalf("got %s, want %s", decoded, h)
	}

	if _, err := FromHex("zz"); err == nil {
		t.Fatalf("Expected error for invalid hex")
	}
	if _, err := FromHex("abcd"); err == nil {
		t.Fatalf("Expected error for wrong length")
	}
}

func TestMapKeyJSON(t *testing.T) {
	m := map[Hash]int{
		FromString("one"): 1,
		FromString("two"): 2,
	}

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Failed to marshal map : %v", err)
	}

	decoded := map[Hash]int{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal map : %v", err)
	}

	if len(decoded) != 2 || decoded[FromString("one")] != 1 || decoded[FromString("two")] != 2 {
		t.Fatalf("got %v, want %v", decoded, m)
	}
}

func TestIsZero(t *testing.T) {
	if !(Hash{}).IsZero() {
		t.Fatalf("Zero value must report zero")
	}
	if FromString("x").IsZero() {
		t.Fatalf("Computed hash must not report zero")
	}
}
