package proof

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/gezibash/arc-trust/pkg/identity"
)

func testSigner(t *testing.T) *identity.SigningKey {
	t.Helper()
	sk, err := identity.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return sk
}

func TestNewVerify(t *testing.T) {
	sk := testSigner(t)
	context := testSigner(t).PublicKey()

	p := New(sk, context, time.Unix(1700000000, 0))
	if err := p.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.Subject != sk.PublicKey() {
		t.Error("proof subject is not the issuing key")
	}
	if p.Context != context {
		t.Error("proof context mismatch")
	}
	if p.IssuedAt != 1700000000 {
		t.Errorf("IssuedAt = %d, want 1700000000", p.IssuedAt)
	}
}

func TestVerifyRejectsTamper(t *testing.T) {
	sk := testSigner(t)
	p := New(sk, testSigner(t).PublicKey(), time.Now())

	// A proof rebound to another subject must fail: the signature belongs
	// to the original subject key.
	tampered := p
	tampered.Subject = testSigner(t).PublicKey()
	if err := tampered.Verify(); err == nil {
		t.Error("Verify accepted a re-subjected proof")
	}

	tampered = p
	tampered.Context = testSigner(t).PublicKey()
	if err := tampered.Verify(); err == nil {
		t.Error("Verify accepted a re-contexted proof")
	}

	tampered = p
	tampered.IssuedAt++
	if err := tampered.Verify(); err == nil {
		t.Error("Verify accepted a re-dated proof")
	}

	tampered = p
	tampered.Version = 2
	if err := tampered.Verify(); !errors.Is(err, ErrVersion) {
		t.Errorf("Verify(bad version) = %v, want ErrVersion", err)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	sk := testSigner(t)
	p := New(sk, testSigner(t).PublicKey(), time.Now())

	decoded, err := FromBytes(p.Bytes())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if !reflect.DeepEqual(*decoded, p) {
		t.Error("binary round trip changed the proof")
	}
	if err := decoded.Verify(); err != nil {
		t.Errorf("Verify after round trip: %v", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	sk := testSigner(t)
	p := New(sk, testSigner(t).PublicKey(), time.Now())

	decoded, err := Parse(p.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(*decoded, p) {
		t.Error("base32 round trip changed the proof")
	}
}

func TestSingleByteFlip(t *testing.T) {
	sk := testSigner(t)
	p := New(sk, testSigner(t).PublicKey(), time.Now())

	valid := p.Bytes()
	for i := range valid {
		mutated := append([]byte(nil), valid...)
		mutated[i] ^= 0x01

		decoded, err := FromBytes(mutated)
		if err != nil {
			continue
		}
		if err := decoded.Verify(); err == nil {
			t.Errorf("flipping byte %d left the proof valid", i)
		}
	}
}

func TestFromBytesRejects(t *testing.T) {
	sk := testSigner(t)
	p := New(sk, testSigner(t).PublicKey(), time.Now())
	valid := p.Bytes()

	if _, err := FromBytes(nil); !errors.Is(err, ErrTruncated) {
		t.Errorf("FromBytes(nil) = %v, want ErrTruncated", err)
	}
	if _, err := FromBytes(valid[:len(valid)-1]); !errors.Is(err, ErrTruncated) {
		t.Errorf("FromBytes(short) = %v, want ErrTruncated", err)
	}
	if _, err := FromBytes(append(append([]byte(nil), valid...), 0)); !errors.Is(err, ErrTruncated) {
		t.Errorf("FromBytes(long) = %v, want ErrTruncated", err)
	}

	bad := append([]byte(nil), valid...)
	bad[0] = 9
	if _, err := FromBytes(bad); !errors.Is(err, ErrVersion) {
		t.Errorf("FromBytes(bad version) = %v, want ErrVersion", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "!!!", "0189"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded", s)
		}
	}
}
