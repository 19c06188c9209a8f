package identity

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGenerateSignVerify(t *testing.T) {
	sk, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	msg := []byte("the quick brown fox")
	sig := sk.Sign(msg)

	if err := Verify(sk.PublicKey(), msg, sig); err != nil {
		t.Errorf("Verify(valid) = %v, want nil", err)
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	sk, _ := Generate()
	msg := []byte("original message")
	sig := sk.Sign(msg)

	tampered := append([]byte(nil), msg...)
	tampered[0] ^= 0x01
	if err := Verify(sk.PublicKey(), tampered, sig); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify(tampered msg) = %v, want ErrBadSignature", err)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	sk, _ := Generate()
	msg := []byte("message")
	sig := sk.Sign(msg)

	for i := 0; i < SignatureSize; i += 7 {
		bad := sig
		bad[i] ^= 0x80
		if err := Verify(sk.PublicKey(), msg, bad); err == nil {
			t.Errorf("Verify with flipped signature byte %d succeeded", i)
		}
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	alice, _ := Generate()
	bob, _ := Generate()
	msg := []byte("message")

	if err := Verify(bob.PublicKey(), msg, alice.Sign(msg)); err == nil {
		t.Error("Verify with wrong key succeeded")
	}
}

func TestVerifyLoopback(t *testing.T) {
	var sig Signature
	err := Verify(Loopback, []byte("anything"), sig)
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Verify(Loopback) = %v, want ErrInvalidKey", err)
	}
}

func TestVerifyMalformedKey(t *testing.T) {
	// Encodings of y = 2 and y = 7: off-curve, since (y^2-1)/(d*y^2+1) has
	// no square root for either. Point decompression must reject them before
	// any signature math runs.
	var sig Signature
	for _, leadByte := range []byte{0x02, 0x07} {
		var pk PublicKey
		pk[0] = leadByte
		if err := Verify(pk, []byte("m"), sig); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Verify(y=%d) = %v, want ErrInvalidKey", leadByte, err)
		}
	}

	// An all-0xff encoding reduces to a decodable point; it must still fail
	// verification, just not as an invalid key.
	var pk PublicKey
	for i := range pk {
		pk[i] = 0xff
	}
	if err := Verify(pk, []byte("m"), sig); err == nil || errors.Is(err, ErrInvalidKey) {
		t.Errorf("Verify(all-ff) = %v, want a signature failure", err)
	}
}

func TestFromSeed(t *testing.T) {
	sk, _ := Generate()

	restored, err := FromSeed(sk.Seed())
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	if restored.PublicKey() != sk.PublicKey() {
		t.Error("FromSeed produced a different public key")
	}

	msg := []byte("deterministic")
	if restored.Sign(msg) != sk.Sign(msg) {
		t.Error("FromSeed produced a different signature")
	}

	if _, err := FromSeed([]byte("short")); !errors.Is(err, ErrInvalidSeed) {
		t.Errorf("FromSeed(short) = %v, want ErrInvalidSeed", err)
	}
}

func TestIsLoopback(t *testing.T) {
	if !IsLoopback(Loopback) {
		t.Error("IsLoopback(Loopback) = false")
	}
	sk, _ := Generate()
	if IsLoopback(sk.PublicKey()) {
		t.Error("IsLoopback(generated key) = true")
	}
}

func TestFingerprint(t *testing.T) {
	sk, _ := Generate()
	fp := Fingerprint(sk.PublicKey())

	if !strings.HasPrefix(fp, "at") {
		t.Errorf("Fingerprint %q missing prefix", fp)
	}
	if len(fp) != len("at")+8 {
		t.Errorf("Fingerprint %q length = %d", fp, len(fp))
	}
	if fp != strings.ToLower(fp) {
		t.Errorf("Fingerprint %q is not lowercase", fp)
	}

	// Stable for the same key.
	if Fingerprint(sk.PublicKey()) != fp {
		t.Error("Fingerprint is not deterministic")
	}
}

func TestPublicKeyHexRoundTrip(t *testing.T) {
	sk, _ := Generate()
	pk := sk.PublicKey()

	decoded, err := DecodePublicKey(EncodePublicKey(pk))
	if err != nil {
		t.Fatalf("DecodePublicKey: %v", err)
	}
	if decoded != pk {
		t.Error("hex round trip changed the key")
	}
}

func TestDecodePublicKeyRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not hex", "zzzz"},
		{"too short", "abcd"},
		{"too long", strings.Repeat("ab", 33)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePublicKey(tt.input); !errors.Is(err, ErrInvalidEncoding) {
				t.Errorf("DecodePublicKey(%q) = %v, want ErrInvalidEncoding", tt.input, err)
			}
		})
	}
}

func TestSignatureHexRoundTrip(t *testing.T) {
	sk, _ := Generate()
	sig := sk.Sign([]byte("m"))

	decoded, err := DecodeSignature(EncodeSignature(sig))
	if err != nil {
		t.Fatalf("DecodeSignature: %v", err)
	}
	if decoded != sig {
		t.Error("hex round trip changed the signature")
	}
}

func TestGeneratedKeysDiffer(t *testing.T) {
	a, _ := Generate()
	b, _ := Generate()
	if a.PublicKey() == b.PublicKey() {
		t.Error("two generated keys are identical")
	}
	if bytes.Equal(a.Seed(), b.Seed()) {
		t.Error("two generated seeds are identical")
	}
}
