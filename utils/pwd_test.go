package utils

import "testing"

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := GetPwd("s3cret")
	if err != nil {
		t.Fatalf("GetPwd: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("password stored in plaintext")
	}
	if !CheckPwd("s3cret", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPwd("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestHashesAreSalted(t *testing.T) {
	a, err := GetPwd("same")
	if err != nil {
		t.Fatalf("GetPwd: %v", err)
	}
	b, err := GetPwd("same")
	if err != nil {
		t.Fatalf("GetPwd: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password are identical")
	}
}
