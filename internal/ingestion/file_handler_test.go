package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileHandler(t *testing.T) {
	fh := NewFileHandler("test_uploads")
	if fh == nil {
		t.Fatal("Expected non-nil FileHandler")
	}

	if fh.Dir() != "test_uploads" {
		t.Errorf("Expected uploadsDir 'test_uploads', got '%s'", fh.Dir())
	}
}

func TestSaveUploadedFile(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "uploads")
	fh := NewFileHandler(tmpDir)

	path, err := fh.SaveUploadedFile("../../jane_resume.txt", strings.NewReader("Excel and SQL"))
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, "jane_resume.txt")
	if path != expectedPath {
		t.Errorf("Expected path %s, got %s", expectedPath, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "Excel and SQL" {
		t.Errorf("Expected content 'Excel and SQL', got '%s'", string(data))
	}
}

func TestDocuments(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		"zoe.txt":   "Python",
		"adam.txt":  "Excel",
		"notes.md":  "ignored",
		"photo.png": "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "nested.pdf"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	docs, err := NewFileHandler(tmpDir).Documents(context.Background())
	if err != nil {
		t.Fatalf("Failed to load documents: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	if docs[0].Name != "adam.txt" || docs[1].Name != "zoe.txt" {
		t.Errorf("Expected documents sorted by name, got %s, %s", docs[0].Name, docs[1].Name)
	}
	if string(docs[0].Content) != "Excel" {
		t.Errorf("Content mismatch for %s", docs[0].Name)
	}
}

func TestDocuments_MissingDir(t *testing.T) {
	docs, err := NewFileHandler(filepath.Join(t.TempDir(), "absent")).Documents(context.Background())
	if err != nil {
		t.Fatalf("Expected no error for missing directory, got %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Expected no documents, got %d", len(docs))
	}
}

func TestDocuments_Canceled(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "a.txt"), []byte("Excel"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFileHandler(tmpDir).Documents(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jd.txt")
	if err := os.WriteFile(path, []byte("SQL and Power BI"), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument() failed: %v", err)
	}
	if doc.Name != "jd.txt" || string(doc.Content) != "SQL and Power BI" {
		t.Errorf("unexpected document: %s %q", doc.Name, doc.Content)
	}

	if _, err := LoadDocument(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestClearUploads(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "test.txt"), []byte("test"), 0644)

	fh := NewFileHandler(tmpDir)
	if err := fh.ClearUploads(); err != nil {
		t.Fatalf("Failed to clear uploads: %v", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty directory, got %d entries", len(entries))
	}
}
