package utils

import (
	"bytes"
	"testing"
)

var testKey = bytes.Repeat([]byte{0x2a}, 32)

func TestEncryptDecrypt(t *testing.T) {
	for _, plain := range []string{"001203004567", "0912345678", "exactly-16-bytes", ""} {
		enc, err := Encrypt(plain, testKey)
		if err != nil {
			t.Fatalf("encrypt %q: %v", plain, err)
		}
		if plain != "" && enc == plain {
			t.Errorf("ciphertext equals plaintext for %q", plain)
		}
		dec, err := Decrypt(enc, testKey)
		if err != nil {
			t.Fatalf("decrypt %q: %v", plain, err)
		}
		if dec != plain {
			t.Errorf("expected %q, got %q", plain, dec)
		}
	}
}

func TestEncrypt_RandomIV(t *testing.T) {
	a, _ := Encrypt("same input", testKey)
	b, _ := Encrypt("same input", testKey)
	if a == b {
		t.Error("expected different ciphertexts for repeated encryption")
	}
}

func TestEncrypt_BadKey(t *testing.T) {
	if _, err := Encrypt("x", []byte("short")); err == nil {
		t.Error("expected error for short key")
	}
	if _, err := Decrypt("abcd", []byte("short")); err == nil {
		t.Error("expected error for short key")
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	enc, err := Encrypt("001203004567", testKey)
	if err != nil {
		t.Fatal(err)
	}
	other := bytes.Repeat([]byte{0x01}, 32)
	if dec, err := Decrypt(enc, other); err == nil && dec == "001203004567" {
		t.Error("decryption with a different key returned the plaintext")
	}
}

func TestHMAC(t *testing.T) {
	mac := GenerateHMAC("secret", "Nguyen Van A", "001203004567")
	if !VerifyHMAC(mac, "secret", "Nguyen Van A", "001203004567") {
		t.Error("expected HMAC to verify")
	}
	if VerifyHMAC(mac, "secret", "Nguyen Van B", "001203004567") {
		t.Error("expected HMAC mismatch for changed field")
	}
	if GenerateHMAC("k", "ab", "c") == GenerateHMAC("k", "a", "bc") {
		t.Error("field boundaries must affect the HMAC")
	}
}
