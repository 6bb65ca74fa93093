package vault

import "testing"

func TestParseRef(t *testing.T) {
	p, k, err := ParseRef("vault:secret/petit/db#password")
	if err != nil || p != "secret/petit/db" || k != "password" {
		t.Fatalf("ParseRef = %q, %q, %v", p, k, err)
	}

	for _, bad := range []string{
		"secret/petit#dsn",
		"vault:secret#dsn",
		"vault:secret/petit",
		"vault:secret/petit#",
		"vault:#key",
	} {
		if _, _, err := ParseRef(bad); err == nil {
			t.Errorf("ParseRef(%q) accepted", bad)
		}
	}
}

func TestIsRef(t *testing.T) {
	if !IsRef("vault:a/b#c") || IsRef("mysql://x") {
		t.Fatal("IsRef misclassified")
	}
}
