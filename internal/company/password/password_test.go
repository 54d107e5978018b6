package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !Verify("s3cret-pass", encoded) {
		t.Fatalf("expected password to verify")
	}
	if Verify("wrong-pass", encoded) {
		t.Fatalf("expected wrong password to fail")
	}
	if Verify("s3cret-pass", "$bcrypt$nope") {
		t.Fatalf("expected malformed hash to fail")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("short"); err != ErrTooShort {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
	if err := Validate("long enough"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
