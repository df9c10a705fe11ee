package transport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\"): %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("LoadConfig(\"\") = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoadConfigFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "addr: \":9090\"\ngrid_width: 15\ngrid_height: 12\nseed: 42\nstation_rate: 5\nbroadcast_every_ticks: 3\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(%s): %v", path, err)
	}
	want := Config{Addr: ":9090", GridWidth: 15, GridHeight: 12, Seed: 42, StationRate: 5, BroadcastEvery: 3}
	if cfg != want {
		t.Fatalf("LoadConfig(%s) = %+v, want %+v", path, cfg, want)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig after WriteDefault: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("round-tripped config = %+v, want %+v", cfg, DefaultConfig())
	}
}
