package uuidv47

import (
	"testing"
	"time"
)

// demoKey matches the key used in the package example.
var demoKey = Key{K0: 0x0123456789abcdef, K1: 0xfedcba9876543210}

const (
	goldenV7     = "018f2d9f-9a2a-7def-8c3f-7b1a2c4d5e6f"
	goldenFacade = "2463c780-7fca-4def-8c3f-7b1a2c4d5e6f"
)

// makeV7 assembles a deterministic version 7 UUID from a timestamp,
// 12 bits of rand_a and 62 bits of rand_b.
func makeV7(ms uint64, randA uint16, randB uint64) UUID {
	var u UUID
	putUint48(u[:6], ms)
	u[6] = 0x70 | byte(randA>>8)&0x0f
	u[7] = byte(randA)
	u[8] = 0x80 | byte(randB>>56)&0x3f
	for i := 0; i < 7; i++ {
		u[9+i] = byte(randB >> (8 * (6 - i)))
	}
	return u
}

func TestUUID(t *testing.T) {
	t.Run("IsNil", testUUIDIsNil)
	t.Run("Version", testUUIDVersion)
	t.Run("Equal", testUUIDEqual)
	t.Run("Bytes", testUUIDBytes)
	t.Run("Timestamp", testUUIDTimestamp)
	t.Run("Payload", testUUIDPayload)
}

func testUUIDIsNil(t *testing.T) {
	var u UUID
	if !u.IsNil() {
		t.Errorf("zero UUID.IsNil() = false, want true")
	}
	if !Nil.IsNil() {
		t.Errorf("Nil.IsNil() = false, want true")
	}
	u = New()
	if u.IsNil() {
		t.Errorf("New().IsNil() = true, want false")
	}
}

func testUUIDVersion(t *testing.T) {
	if got := Must(Parse(goldenV7)).Version(); got != 7 {
		t.Errorf("Version() = %d, want 7", got)
	}
	if got := Must(Parse(goldenFacade)).Version(); got != 4 {
		t.Errorf("Version() = %d, want 4", got)
	}
	if got := Nil.Version(); got != 0 {
		t.Errorf("Nil.Version() = %d, want 0", got)
	}
}

func testUUIDEqual(t *testing.T) {
	a := Must(Parse(goldenV7))
	b := Must(Parse(goldenV7))
	if !a.Equal(b) {
		t.Error("Equal() = false for identical values")
	}
	if a.Equal(Must(Parse(goldenFacade))) {
		t.Error("Equal() = true for distinct values")
	}
}

func testUUIDBytes(t *testing.T) {
	u := makeV7(0x0123456789ab, 0xdef, 0x3fffffffffffffff)
	got := u.Bytes()
	if len(got) != 16 {
		t.Fatalf("Bytes() length = %d, want 16", len(got))
	}
	for i := range got {
		if got[i] != u[i] {
			t.Errorf("Bytes()[%d] = %x, want %x", i, got[i], u[i])
		}
	}
	// Mutating the slice must not touch the value.
	got[0] ^= 0xff
	if got[0] == u[0] {
		t.Error("Bytes() aliases the UUID array")
	}
}

func testUUIDTimestamp(t *testing.T) {
	const ms = uint64(0x018f2d9f9a2a)
	u := makeV7(ms, 0xdef, 0)
	if got := u.Timestamp(); got.UnixMilli() != int64(ms) {
		t.Errorf("Timestamp() = %v, want unix ms %d", got, ms)
	}
}

func testUUIDPayload(t *testing.T) {
	u := Must(Parse(goldenV7))
	got := u.Payload()
	want := [10]byte{0x0d, 0xef, 0x0c, 0x3f, 0x7b, 0x1a, 0x2c, 0x4d, 0x5e, 0x6f}
	if got != want {
		t.Errorf("Payload() = %x, want %x", got, want)
	}
}

func TestEncodeGolden(t *testing.T) {
	v7 := Must(Parse(goldenV7))

	facade := Encode(v7, demoKey)
	if got := facade.String(); got != goldenFacade {
		t.Errorf("Encode() = %s, want %s", got, goldenFacade)
	}

	back := Decode(facade, demoKey)
	if !back.Equal(v7) {
		t.Errorf("Decode(Encode()) = %s, want %s", back, v7)
	}
}

func TestRoundTrip(t *testing.T) {
	keys := []Key{
		demoKey,
		{K0: 0xffffffffffffffff, K1: 0x0000000000000000},
		NewKey(),
	}
	tsList := []uint64{0, 1, 0x0123456789ab, 0xffffffffffff}
	raList := []uint16{0, 0x0abc, 0x0fff}
	rbList := []uint64{0, 0x0123456789abcdef & 0x3fffffffffffffff, 0x3fffffffffffffff}

	for _, k := range keys {
		for _, ts := range tsList {
			for _, ra := range raList {
				for _, rb := range rbList {
					id := makeV7(ts, ra, rb)
					facade := Encode(id, k)
					back := Decode(facade, k)
					if back != id {
						t.Fatalf("round trip failed for ts=%x ra=%x rb=%x: %s -> %s -> %s",
							ts, ra, rb, id, facade, back)
					}
				}
			}
		}
	}
}

func TestEncodeShape(t *testing.T) {
	k := NewKey()
	for i := 0; i < 256; i++ {
		id := New()
		facade := Encode(id, k)

		if got := facade.Version(); got != 4 {
			t.Fatalf("facade version = %d, want 4", got)
		}
		if facade[8]&0xc0 != 0x80 {
			t.Fatalf("facade variant bits = %02x, want 10xxxxxx", facade[8])
		}
		if facade[6]&0x0f != id[6]&0x0f || facade[7] != id[7] || facade[8]&0x3f != id[8]&0x3f {
			t.Fatalf("facade mutated rand_a bits: %s vs %s", facade, id)
		}
		for j := 9; j < 16; j++ {
			if facade[j] != id[j] {
				t.Fatalf("facade mutated byte %d: %s vs %s", j, facade, id)
			}
		}
	}
}

func TestPayloadStability(t *testing.T) {
	k := NewKey()
	for i := 0; i < 64; i++ {
		id := New()
		facade := Encode(id, k)
		if id.Payload() != facade.Payload() {
			t.Fatalf("payload changed across encode: %x vs %x", id.Payload(), facade.Payload())
		}
	}
}

func TestDecodeWrongKey(t *testing.T) {
	id := Must(Parse(goldenV7))
	facade := Encode(id, demoKey)

	wrong := Key{K0: demoKey.K0 ^ 1, K1: demoKey.K1}
	back := Decode(facade, wrong)

	if back == id {
		t.Error("decode with wrong key recovered the original")
	}
	// Only the timestamp diverges, never the payload.
	if back.Payload() != id.Payload() {
		t.Errorf("wrong key altered payload: %x vs %x", back.Payload(), id.Payload())
	}
	if back.Version() != 7 {
		t.Errorf("wrong-key decode version = %d, want 7", back.Version())
	}
}

func TestEncodeDeterministic(t *testing.T) {
	id := New()
	k := NewKey()
	if Encode(id, k) != Encode(id, k) {
		t.Error("Encode is not deterministic")
	}
}

func TestDecodeRecoversTimestamp(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	id := NewAt(at)
	back := Decode(Encode(id, demoKey), demoKey)
	if got := back.Timestamp().UnixMilli(); got != at.UnixMilli() {
		t.Errorf("recovered timestamp = %d, want %d", got, at.UnixMilli())
	}
}

func BenchmarkEncode(b *testing.B) {
	id := Must(Parse(goldenV7))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sink = Encode(id, demoKey)
	}
}

func BenchmarkDecode(b *testing.B) {
	facade := Must(Parse(goldenFacade))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sink = Decode(facade, demoKey)
	}
}

func BenchmarkEncodeDecode(b *testing.B) {
	id := Must(Parse(goldenV7))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sink = Decode(Encode(id, demoKey), demoKey)
	}
}

var sink UUID
