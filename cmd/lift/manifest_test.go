package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLiftTomlWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(root, "lift.toml")
	if err := os.WriteFile(manifest, []byte("[opt]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, ok, err := findLiftToml(nested)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("manifest not found from nested directory")
	}
	if path != manifest {
		t.Errorf("found %q, want %q", path, manifest)
	}
}

func TestFindLiftTomlMissing(t *testing.T) {
	// A fresh temp dir has no lift.toml, but a parent outside the
	// temp tree might; anchor the check on the returned path instead.
	dir := t.TempDir()
	path, ok, err := findLiftToml(dir)
	if err != nil {
		t.Fatal(err)
	}
	if ok && filepath.Dir(path) == dir {
		t.Errorf("unexpected manifest in fresh temp dir: %s", path)
	}
}

func TestLoadToolManifest(t *testing.T) {
	dir := t.TempDir()
	src := "[opt]\nno-licm = true\nemit-ir = true\n"
	if err := os.WriteFile(filepath.Join(dir, "lift.toml"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	mf, ok, err := loadToolManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("manifest not found")
	}
	if !mf.Config.Opt.NoLICM || !mf.Config.Opt.EmitIR {
		t.Errorf("manifest options not decoded: %+v", mf.Config.Opt)
	}
	if mf.Config.Opt.NoVerify || mf.Config.Opt.NoStats {
		t.Errorf("unset options decoded true: %+v", mf.Config.Opt)
	}
	if mf.Root != dir {
		t.Errorf("Root = %q, want %q", mf.Root, dir)
	}
}
