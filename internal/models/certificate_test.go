package models

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestCertificateSerial(t *testing.T) {
	c := NewCertificate(7, 3, 92.5)
	if len(c.Serial) != 8 {
		t.Fatalf("serial length = %d, want 8", len(c.Serial))
	}
	for _, r := range c.Serial {
		if !strings.ContainsRune(serialCharset, r) {
			t.Fatalf("serial %q contains %q outside charset", c.Serial, r)
		}
	}
	if c.Grade != "A" {
		t.Fatalf("grade for 92.5 = %q", c.Grade)
	}

	// No two certificates should collide in practice.
	if NewCertificate(7, 3, 92.5).Serial == c.Serial {
		t.Fatalf("two serials collided")
	}
}

func TestCertificateFullSerial(t *testing.T) {
	c := NewCertificate(7, 3, 88)
	c.Course = &Course{Title: "Piano Foundations", Code: "PNO"}
	want := fmt.Sprintf("PNO-%d-0007-%s", time.Now().Year(), c.Serial)
	if got := c.FullSerial(); got != want {
		t.Fatalf("FullSerial = %q, want %q", got, want)
	}

	// Without a course the prefix falls back.
	c.Course = nil
	if !strings.HasPrefix(c.FullSerial(), "GEN-") {
		t.Fatalf("FullSerial without course = %q", c.FullSerial())
	}
}

func TestCertificateRevokeIsOneWay(t *testing.T) {
	c := NewCertificate(1, 1, 75)
	admin := &User{ID: 2, FullName: "Admin", IsAdmin: true}

	c.Revoke("cheating", admin)
	if !c.IsRevoked() || c.IsValid {
		t.Fatalf("revoke did not invalidate: %+v", c)
	}
	if c.Status() != "revoked" {
		t.Fatalf("status = %q", c.Status())
	}
	firstAt := *c.RevokedAt
	firstReason := c.RevocationReason

	// Second revocation keeps the original record.
	other := &User{ID: 3, FullName: "Other"}
	c.Revoke("different reason", other)
	if !c.RevokedAt.Equal(firstAt) || c.RevocationReason != firstReason {
		t.Fatalf("second revoke overwrote the first")
	}
	if c.Metadata["revoked_by"] != admin.ID {
		t.Fatalf("revoked_by = %v", c.Metadata["revoked_by"])
	}
}

func TestCertificateExpiry(t *testing.T) {
	c := NewCertificate(1, 1, 75)
	if c.IsExpired(time.Now()) {
		t.Fatalf("fresh certificate should not be expired")
	}
	if !c.IsExpired(c.IssuedAt.Add(certificateValidity + time.Second)) {
		t.Fatalf("certificate should expire after validity window")
	}
	// Expiry is derived; it never flips the stored validity.
	if !c.IsValid || c.Status() != "valid" {
		t.Fatalf("expiry check mutated certificate: %+v", c)
	}
}
