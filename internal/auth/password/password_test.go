package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !Verify(hash, "s3cret-pass") {
		t.Fatal("expected matching password to verify")
	}
	if Verify(hash, "wrong-pass") {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestVerifyGarbageHash(t *testing.T) {
	if Verify("not-a-bcrypt-hash", "anything") {
		t.Fatal("garbage hash must never verify")
	}
}
