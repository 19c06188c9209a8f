package invite

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gezibash/arc-trust/pkg/access"
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

func testInstance(t *testing.T) identity.PublicKey {
	t.Helper()
	return testSigner(t).PublicKey()
}

func TestCreateFlatVerify(t *testing.T) {
	sk := testSigner(t)
	instance := testInstance(t)

	inv, err := CreateFlat(sk, instance, access.Collaborate, 1, 0)
	if err != nil {
		t.Fatalf("CreateFlat: %v", err)
	}

	claims, err := inv.Verify(time.Now())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Capability != access.Collaborate {
		t.Errorf("claims.Capability = %v, want collaborate", claims.Capability)
	}
	if claims.Instance != instance {
		t.Error("claims.Instance mismatch")
	}
	if claims.RootIssuer != sk.PublicKey() || claims.LeafIssuer != sk.PublicKey() {
		t.Error("claims issuers mismatch")
	}
	if claims.Depth != 1 {
		t.Errorf("claims.Depth = %d, want 1", claims.Depth)
	}
}

// Verification is stateless: the same bytes verify the same way twice.
// Use-count enforcement belongs to the caller at redemption time.
func TestVerifyStateless(t *testing.T) {
	sk := testSigner(t)
	inv, err := CreateFlat(sk, testInstance(t), access.Collaborate, 1, 0)
	if err != nil {
		t.Fatalf("CreateFlat: %v", err)
	}

	raw := inv.Bytes()
	for i := 0; i < 2; i++ {
		decoded, err := FromBytes(raw)
		if err != nil {
			t.Fatalf("FromBytes pass %d: %v", i, err)
		}
		if _, err := decoded.Verify(time.Now()); err != nil {
			t.Fatalf("Verify pass %d: %v", i, err)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	sk := testSigner(t)
	root, err := Create(sk, testInstance(t), access.Admin, 3, 5, time.Now().Add(time.Hour).Unix())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	child, err := Delegate(root, testSigner(t), access.Collaborate, 1, 0)
	if err != nil {
		t.Fatalf("Delegate: %v", err)
	}

	for _, inv := range []*Invite{root, child} {
		decoded, err := FromBytes(inv.Bytes())
		if err != nil {
			t.Fatalf("FromBytes: %v", err)
		}
		if !reflect.DeepEqual(decoded, inv) {
			t.Errorf("binary round trip changed the invite: %+v != %+v", decoded, inv)
		}
	}
}

func TestBase32RoundTrip(t *testing.T) {
	sk := testSigner(t)
	inv, err := CreateFlat(sk, testInstance(t), access.View, 1, 0)
	if err != nil {
		t.Fatalf("CreateFlat: %v", err)
	}

	s := inv.String()
	decoded, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(decoded, inv) {
		t.Error("base32 round trip changed the invite")
	}

	// Decoding is case-insensitive so transcribed invites survive.
	upper, err := Parse(strings.ToUpper(s))
	if err != nil {
		t.Fatalf("Parse(upper): %v", err)
	}
	if !reflect.DeepEqual(upper, inv) {
		t.Error("uppercase decode changed the invite")
	}
}

// Flipping any single byte of a valid invite must break decoding or
// verification; nothing in the wire image is unauthenticated.
func TestSingleByteFlip(t *testing.T) {
	sk := testSigner(t)
	root, err := Create(sk, testInstance(t), access.Admin, 2, 1, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	inv, err := Delegate(root, testSigner(t), access.Collaborate, 1, 0)
	if err != nil {
		t.Fatalf("Delegate: %v", err)
	}

	valid := inv.Bytes()
	for i := range valid {
		mutated := append([]byte(nil), valid...)
		mutated[i] ^= 0x01

		decoded, err := FromBytes(mutated)
		if err != nil {
			continue // rejected at decode, fine
		}
		if _, err := decoded.Verify(time.Now()); err == nil {
			t.Errorf("flipping byte %d left the invite valid", i)
		}
	}
}

func TestDelegateNarrowing(t *testing.T) {
	sk := testSigner(t)
	instance := testInstance(t)

	root, err := Create(sk, instance, access.Collaborate, 2, 1, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Escalation is rejected at construction time, not just verification.
	if _, err := Delegate(root, testSigner(t), access.Admin, 1, 0); !errors.Is(err, ErrEscalation) {
		t.Errorf("Delegate(admin from collaborate) = %v, want ErrEscalation", err)
	}

	// Equal and lesser capabilities are fine.
	for _, c := range []access.Capability{access.Collaborate, access.View} {
		if _, err := Delegate(root, testSigner(t), c, 1, 0); err != nil {
			t.Errorf("Delegate(%v) = %v", c, err)
		}
	}
}

func TestDelegateDepthExhaustion(t *testing.T) {
	sk := testSigner(t)
	flat, err := CreateFlat(sk, testInstance(t), access.Admin, 1, 0)
	if err != nil {
		t.Fatalf("CreateFlat: %v", err)
	}

	if _, err := Delegate(flat, testSigner(t), access.View, 1, 0); !errors.Is(err, ErrDepthExhausted) {
		t.Errorf("Delegate(flat) = %v, want ErrDepthExhausted", err)
	}

	// Depth decrements by one per hop until exhausted.
	inv, err := Create(sk, testInstance(t), access.Admin, 2, 1, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for hop := 0; hop < 2; hop++ {
		inv, err = Delegate(inv, testSigner(t), access.View, 1, 0)
		if err != nil {
			t.Fatalf("Delegate hop %d: %v", hop, err)
		}
	}
	if inv.Leaf().MaxDepth != 0 {
		t.Errorf("leaf depth = %d, want 0", inv.Leaf().MaxDepth)
	}
	if _, err := Delegate(inv, testSigner(t), access.View, 1, 0); !errors.Is(err, ErrDepthExhausted) {
		t.Errorf("Delegate past exhaustion = %v, want ErrDepthExhausted", err)
	}
}

// A forged chain where link 2 claims more than link 1 granted must fail
// verification naming link 2 and the narrowing rule.
func TestVerifyNarrowingViolation(t *testing.T) {
	issuer := testSigner(t)
	delegate := testSigner(t)
	instance := testInstance(t)

	root, err := Create(issuer, instance, access.Collaborate, 2, 1, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Hand-build the escalating second link with a valid chained signature;
	// only verification stands between it and an Admin grant.
	link := Link{
		Issuer:     delegate.PublicKey(),
		Capability: access.Admin,
		MaxDepth:   1,
		MaxUses:    1,
		Nonce:      [16]byte{1, 2, 3},
	}
	link.Sig = delegate.Sign(signingMessage(linkHash(root.Leaf()), instance, &link))
	forged := &Invite{Version: Version, Instance: instance, Links: append(root.Links, link)}

	_, err = forged.Verify(time.Now())
	var lerr *LinkError
	if !errors.As(err, &lerr) {
		t.Fatalf("Verify = %v, want LinkError", err)
	}
	if lerr.Index != 1 {
		t.Errorf("LinkError.Index = %d, want 1", lerr.Index)
	}
	if !errors.Is(err, ErrEscalation) {
		t.Errorf("LinkError cause = %v, want ErrEscalation", lerr.Cause)
	}
}

func TestVerifyDepthViolation(t *testing.T) {
	issuer := testSigner(t)
	delegate := testSigner(t)
	instance := testInstance(t)

	root, err := Create(issuer, instance, access.Admin, 2, 1, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Depth must strictly decrease; a link repeating the parent's depth is
	// an attempt to mint unlimited sub-delegations.
	link := Link{
		Issuer:     delegate.PublicKey(),
		Capability: access.View,
		MaxDepth:   2,
		MaxUses:    1,
	}
	link.Sig = delegate.Sign(signingMessage(linkHash(root.Leaf()), instance, &link))
	forged := &Invite{Version: Version, Instance: instance, Links: append(root.Links, link)}

	_, err = forged.Verify(time.Now())
	if !errors.Is(err, ErrDepthViolation) {
		t.Errorf("Verify = %v, want ErrDepthViolation", err)
	}
}

func TestVerifyExpiry(t *testing.T) {
	sk := testSigner(t)
	now := time.Now()

	expired, err := CreateFlat(sk, testInstance(t), access.View, 1, now.Add(-time.Hour).Unix())
	if err != nil {
		t.Fatalf("CreateFlat: %v", err)
	}
	if _, err := expired.Verify(now); !errors.Is(err, ErrExpiredLink) {
		t.Errorf("Verify(expired) = %v, want ErrExpiredLink", err)
	}

	live, err := CreateFlat(sk, testInstance(t), access.View, 1, now.Add(time.Hour).Unix())
	if err != nil {
		t.Fatalf("CreateFlat: %v", err)
	}
	if _, err := live.Verify(now); err != nil {
		t.Errorf("Verify(live) = %v", err)
	}
}

func TestVerifyWrongInstance(t *testing.T) {
	sk := testSigner(t)
	inv, err := CreateFlat(sk, testInstance(t), access.View, 1, 0)
	if err != nil {
		t.Fatalf("CreateFlat: %v", err)
	}

	// Rebinding the invite to another instance invalidates every signature.
	inv.Instance = testInstance(t)
	if _, err := inv.Verify(time.Now()); err == nil {
		t.Error("Verify with swapped instance succeeded")
	}
}

func TestCreateRejectsExcessiveDepth(t *testing.T) {
	sk := testSigner(t)
	if _, err := Create(sk, testInstance(t), access.Admin, MaxChainLength, 1, 0); !errors.Is(err, ErrChainTooLong) {
		t.Errorf("Create(depth=%d) = %v, want ErrChainTooLong", MaxChainLength, err)
	}
}

func TestFromBytesRejects(t *testing.T) {
	sk := testSigner(t)
	inv, err := CreateFlat(sk, testInstance(t), access.View, 1, 0)
	if err != nil {
		t.Fatalf("CreateFlat: %v", err)
	}
	valid := inv.Bytes()

	overCount := append([]byte(nil), valid...)
	overCount[headerSize-1] = MaxChainLength + 1

	zeroCount := append([]byte(nil), valid...)
	zeroCount[headerSize-1] = 0

	badVersion := append([]byte(nil), valid...)
	badVersion[0] = 0xfe

	badCap := append([]byte(nil), valid...)
	badCap[headerSize+identity.PublicKeySize] = 0x7f

	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"empty", nil, ErrTruncated},
		{"header only", valid[:headerSize], ErrTruncated},
		{"truncated link", valid[:len(valid)-1], ErrTruncated},
		{"trailing byte", append(append([]byte(nil), valid...), 0x00), ErrTrailingData},
		{"zero links", zeroCount, ErrEmptyChain},
		{"over max links", overCount, ErrChainTooLong},
		{"bad version", badVersion, ErrVersion},
		{"bad capability", badCap, ErrBadCapability},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromBytes(tt.input); !errors.Is(err, tt.want) {
				t.Errorf("FromBytes = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "!!!", "01189998819991197253", "abc def"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded", s)
		}
	}
}
