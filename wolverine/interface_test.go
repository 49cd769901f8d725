package wolverine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sokinpui/wolverine.go/wolverine"
)

func TestLibraryApply(t *testing.T) {
	setup(t, "")
	dir := t.TempDir()
	script := filepath.Join(dir, "app.py")
	if err := os.WriteFile(script, []byte("first line\nsecond line\nthird line\n"), 0644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	reply := `[{"operation": "InsertAfter", "line": 1, "content": "inserted"}]`
	cfg := wolverine.Config{StateDir: filepath.Join(dir, ".wolverine")}

	t.Run("DryRun", func(t *testing.T) {
		dry := cfg
		dry.DryRun = true
		report, result, err := wolverine.Apply(script, reply, dry)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if report.Empty() {
			t.Errorf("Expected a non-empty report")
		}
		if len(result["Modified"]) != 0 {
			t.Errorf("Expected no modified files on dry run, got %v", result["Modified"])
		}
	})

	t.Run("Write", func(t *testing.T) {
		_, result, err := wolverine.Apply(script, reply, cfg)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if len(result["Modified"]) != 1 {
			t.Errorf("Expected 1 modified file, got %v", result["Modified"])
		}

		data, err := os.ReadFile(script)
		if err != nil {
			t.Fatalf("Failed to read script: %v", err)
		}
		want := "first line\ninserted\nsecond line\nthird line\n"
		if string(data) != want {
			t.Errorf("Expected %q, got %q", want, string(data))
		}
	})

	t.Run("Invalid reply", func(t *testing.T) {
		if _, _, err := wolverine.Apply(script, "not json", cfg); err == nil {
			t.Errorf("Expected an error for an unparseable reply")
		}
	})
}
