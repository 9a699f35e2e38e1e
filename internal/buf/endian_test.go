package buf

import "testing"

func TestU64LERoundTrip(t *testing.T) {
	b := make([]byte, 8)
	if !PutU64LE(b, 0x0102030405060708) {
		t.Fatalf("PutU64LE failed on 8-byte buffer")
	}
	if b[0] != 0x08 || b[7] != 0x01 {
		t.Fatalf("unexpected byte order: % x", b)
	}
	if got := U64LE(b); got != 0x0102030405060708 {
		t.Fatalf("U64LE=0x%x", got)
	}
}

func TestU64LEShort(t *testing.T) {
	if U64LE([]byte{1, 2, 3}) != 0 {
		t.Fatalf("short read should return 0")
	}
	if PutU64LE(make([]byte, 7), 1) {
		t.Fatalf("short write should fail")
	}
}
