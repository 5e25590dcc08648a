package handlers

import "testing"

func TestValidNameAcceptsLetters(t *testing.T) {
	for _, name := range []string{"Latte", "Flat White", "Kava", "Ąžuolas"} {
		if !validName(name) {
			t.Fatalf("expected %q to be valid", name)
		}
	}
}

func TestValidNameRejectsDigitsAndSymbols(t *testing.T) {
	for _, name := range []string{"", "   ", "Latte2", "Mocha!", "a-b"} {
		if validName(name) {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestValidNameRejectsOverlongNames(t *testing.T) {
	if validName("Aaaaaaaaaaaaaaaaaaaaa") { // 21 runes
		t.Fatal("expected 21-character name to be rejected")
	}
	if !validName("Aaaaaaaaaaaaaaaaaaaa") { // 20 runes
		t.Fatal("expected 20-character name to be accepted")
	}
}

func TestLowerCamel(t *testing.T) {
	tests := map[string]string{
		"Email":    "email",
		"Name":     "name",
		"":         "",
		"username": "username",
	}
	for in, want := range tests {
		if got := lowerCamel(in); got != want {
			t.Fatalf("lowerCamel(%q) = %q, want %q", in, got, want)
		}
	}
}
