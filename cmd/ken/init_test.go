package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCmd(t *testing.T) {
	tmpDir := t.TempDir()
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	cmd := NewInitCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	kenPath := filepath.Join(tmpDir, ".ken")
	if _, err := os.Stat(filepath.Join(kenPath, "index")); os.IsNotExist(err) {
		t.Error("index directory not created")
	}
	if _, err := os.Stat(filepath.Join(kenPath, "config.yaml")); os.IsNotExist(err) {
		t.Error("config.yaml not created")
	}
}

func TestInitCmdWithCorpusFlag(t *testing.T) {
	tmpDir := t.TempDir()
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	cmd := NewInitCmd()
	cmd.SetArgs([]string{"--corpus", "tickets.csv"})
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ".ken", "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "tickets.csv") {
		t.Errorf("config missing corpus path: %s", data)
	}
}

func TestInitCmdAlreadyInitialized(t *testing.T) {
	tmpDir := t.TempDir()
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	kenPath := filepath.Join(tmpDir, ".ken")
	if err := os.MkdirAll(kenPath, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(kenPath, "config.yaml"), []byte("corpus:\n  path: corpus.csv\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := NewInitCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for already initialized")
	}
}

func TestInitCmdGlobal(t *testing.T) {
	tmpDir := t.TempDir()

	origHome := os.Getenv("HOME")
	defer os.Setenv("HOME", origHome)
	os.Setenv("HOME", tmpDir)

	cmd := NewInitCmd()
	cmd.SetArgs([]string{"--global"})
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, ".ken", "config.yaml")); os.IsNotExist(err) {
		t.Error("global config not created")
	}
}
