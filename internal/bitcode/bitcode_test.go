package bitcode

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"lift/internal/diag"
	"lift/internal/ir"
	"lift/internal/irparse"
)

const roundTripProgram = `module rt
global @g

fn @helper(%a)

fn @main(%x) {
entry:
  %p = alloca
  store %x, %p
  br loop
loop:
  %i = phi [entry, 0], [loop, %i2]
  %v = load volatile %p
  %r = call @helper(%v, @g)
  %i2 = add %i, 1
  %c = cmp lt %i2, %x
  condbr %c, loop, exit
exit:
  ret %r
}
`

func TestRoundTrip(t *testing.T) {
	bag := diag.NewBag(100)
	m, ok := irparse.ParseModule("rt.lir", roundTripProgram, bag)
	if !ok {
		for _, d := range bag.Items() {
			t.Logf("%s: %s", d.Pos, d.Message)
		}
		t.Fatalf("parse failed")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := ir.Verify(got); err != nil {
		t.Fatalf("decoded module invalid: %v", err)
	}

	var want, have strings.Builder
	if err := ir.DumpModule(&want, m); err != nil {
		t.Fatal(err)
	}
	if err := ir.DumpModule(&have, got); err != nil {
		t.Fatal(err)
	}
	if want.String() != have.String() {
		t.Errorf("round trip drift:\n--- in\n%s\n--- out\n%s", want.String(), have.String())
	}
}

func TestDecodeRejectsSchemaMismatch(t *testing.T) {
	var buf bytes.Buffer
	p := payload{Schema: schemaVersion + 1, Name: "future"}
	if err := msgpack.NewEncoder(&buf).Encode(&p); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(&buf); !errors.Is(err, errSchema) {
		t.Errorf("Decode = %v, want schema mismatch", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte{0xff, 0x00, 0x13})); err == nil {
		t.Error("Decode accepted garbage input")
	}
}
