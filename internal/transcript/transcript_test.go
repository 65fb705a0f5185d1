package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendExchange(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewFileRecorder(dir)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}

	if err := rec.AppendExchange("velvet", "晚安", "晚安，睡個好覺"); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := rec.AppendExchange("velvet", "還在嗎", "一直都在"); err != nil {
		t.Fatalf("append2: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "velvet_log.txt"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(b)
	for _, want := range []string{"Rubina（velvet）：晚安", "Lumie：一直都在"} {
		if !strings.Contains(content, want) {
			t.Fatalf("log missing %q:\n%s", want, content)
		}
	}
	if strings.Count(content, "---") != 4 {
		t.Fatalf("expected two timestamped blocks:\n%s", content)
	}
}

func TestRoomsGetSeparateFiles(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewFileRecorder(dir)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}
	if err := rec.AppendExchange("persuade", "a", "b"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "persuade_log.txt")); err != nil {
		t.Fatalf("persuade log missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "velvet_log.txt")); !os.IsNotExist(err) {
		t.Fatalf("unexpected velvet log")
	}
}
