package operators

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `ICAO,Naam
KLM,KLM Royal Dutch Airlines
 tra ,Transavia
EZY,easyJet
`

func TestLoadFrom(t *testing.T) {
	dir, skipped, err := LoadFrom(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if skipped != 0 {
		t.Errorf("Expected 0 skipped rows, got %d", skipped)
	}
	if dir.Len() != 3 {
		t.Fatalf("Expected 3 operators, got %d", dir.Len())
	}

	tests := []struct {
		code string
		want string
	}{
		{"KLM", "KLM Royal Dutch Airlines"},
		{"klm", "KLM Royal Dutch Airlines"},
		{"TRA", "Transavia"},
		{"EZY", "easyJet"},
	}
	for _, tt := range tests {
		if got := dir.Lookup(tt.code); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// TestLookupUnknownCode verifies that an unknown code is shown unchanged.
func TestLookupUnknownCode(t *testing.T) {
	dir, _, err := LoadFrom(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if got := dir.Lookup("RYR"); got != "RYR" {
		t.Errorf("Expected raw code RYR, got %q", got)
	}
	if got := Empty().Lookup("DAL"); got != "DAL" {
		t.Errorf("Expected raw code DAL from empty directory, got %q", got)
	}

	var nilDir *Directory
	if got := nilDir.Lookup("UAL"); got != "UAL" {
		t.Errorf("Expected raw code UAL from nil directory, got %q", got)
	}
}

func TestLoadFromMalformedRows(t *testing.T) {
	data := "\ufeffNaam,ICAO,Land\n" +
		"Lufthansa,DLH,DE\n" +
		"Too,Few\n" +
		",BAW,GB\n" +
		"Nameless,,XX\n" +
		"\"Broken quote,AFR,FR\n" +
		"Swiss,SWR,CH\n"

	dir, skipped, err := LoadFrom(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := dir.Lookup("DLH"); got != "Lufthansa" {
		t.Errorf("Expected Lufthansa, got %q", got)
	}
	if got := dir.Lookup("BAW"); got != "BAW" {
		t.Errorf("Expected row without name to be skipped, got %q", got)
	}
	if skipped < 3 {
		t.Errorf("Expected at least 3 skipped rows, got %d", skipped)
	}
}

func TestLoadFromBadHeader(t *testing.T) {
	t.Run("Empty input", func(t *testing.T) {
		if _, _, err := LoadFrom(strings.NewReader("")); err == nil {
			t.Error("Expected error for empty input")
		}
	})

	t.Run("Missing column", func(t *testing.T) {
		if _, _, err := LoadFrom(strings.NewReader("ICAO,Name\nKLM,KLM\n")); err == nil {
			t.Error("Expected error for missing Naam column")
		}
	})
}

// TestLoadMissingFile verifies that a missing file degrades to an empty directory.
func TestLoadMissingFile(t *testing.T) {
	dir := Load(filepath.Join(t.TempDir(), "missing.csv"), nil)
	if dir == nil {
		t.Fatal("Expected empty directory, got nil")
	}
	if dir.Len() != 0 {
		t.Errorf("Expected 0 operators, got %d", dir.Len())
	}
	if got := dir.Lookup("KLM"); got != "KLM" {
		t.Errorf("Expected raw code KLM, got %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ICAO codes.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	dir := Load(path, nil)
	if dir.Len() != 3 {
		t.Errorf("Expected 3 operators, got %d", dir.Len())
	}
}
