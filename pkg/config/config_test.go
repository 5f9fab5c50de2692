package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port is required")
	}
	s.valid = true
	return nil
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "book")
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("name: ${SAMPLE_NAME}\nport: 9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var s sample
	if err := Load(file, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "book" || s.Port != 9000 || !s.valid {
		t.Errorf("sample = %+v", s)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &s); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestLoadOptional_KeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Port: 8080}
	if err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "default" || s.Port != 8080 || !s.valid {
		t.Errorf("sample = %+v", s)
	}
}

func TestLoadOptional_Overlay(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("name: custom\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := sample{Name: "default", Port: 8080}
	if err := LoadOptional(file, &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "custom" || s.Port != 8080 {
		t.Errorf("sample = %+v", s)
	}
}

func TestLoadOptional_Validates(t *testing.T) {
	var s sample
	if err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s); err == nil {
		t.Fatal("invalid defaults should fail validation")
	}
}
