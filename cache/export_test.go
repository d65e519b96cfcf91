package cache

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// opaqueCache satisfies ModelCache but cannot list its entries.
type opaqueCache struct{}

func (opaqueCache) Get(string) (string, bool) { return "", false }
func (opaqueCache) Set(string, string) error  { return nil }
func (opaqueCache) Delete(string) error       { return nil }

func TestExporter_Export(t *testing.T) {
	c := NewInMemoryCache(3600)
	c.Set("groq:gsk_abcdefgh", "llama-3.1-8b-instant")
	c.Set("google:AIzaSyA12345", "gemini-2.0-flash")

	exporter := NewExporter(c)
	exporter.now = func() time.Time { return time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC) }
	var buf bytes.Buffer

	err := exporter.Export(&buf, map[string]string{"device": "desk-1"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var export ExportFormat
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}

	if export.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", export.Version)
	}
	if export.ExportedAt != "2025-05-01T08:00:00Z" {
		t.Errorf("Unexpected exported_at %q", export.ExportedAt)
	}
	if len(export.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(export.Entries))
	}
	// sorted by key
	if export.Entries[0].Key != "google:AIzaSyA12345" || export.Entries[0].Provider != "google" {
		t.Errorf("Unexpected first entry %+v", export.Entries[0])
	}
	if export.Metadata["device"] != "desk-1" {
		t.Errorf("Expected metadata device=desk-1, got %v", export.Metadata)
	}
}

func TestExporter_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter(opaqueCache{}).Export(&buf, nil); err == nil {
		t.Error("Expected error exporting a cache without Entries")
	}
}

func TestImporter_Import(t *testing.T) {
	jsonData := `{
		"version": "1.0",
		"exported_at": "2024-01-01T00:00:00Z",
		"entries": [
			{"key": "groq:gsk_abcdefgh", "provider": "groq", "model": "llama-3.1-8b-instant"},
			{"key": "google:AIzaSyA12345", "model": "gemini-2.0-flash"},
			{"key": "", "model": "orphan"}
		],
		"metadata": {"device": "desk-1"}
	}`

	c := NewInMemoryCache(3600)
	importer := NewImporter(c)

	result, err := importer.Import(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if result.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", result.Failed)
	}

	if val, ok := c.Get("groq:gsk_abcdefgh"); !ok || val != "llama-3.1-8b-instant" {
		t.Errorf("groq entry not found or wrong value: %s", val)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := NewInMemoryCache(3600)
	src.Set("groq:gsk_abcdefgh", "llama-3.1-8b-instant")
	src.Set("mistral:abcdefabcdef", "mistral-small-latest")

	var buf bytes.Buffer
	if err := NewExporter(src).Export(&buf, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := NewInMemoryCache(3600)
	result, err := NewImporter(dst).Import(&buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if val, ok := dst.Get("mistral:abcdefabcdef"); !ok || val != "mistral-small-latest" {
		t.Errorf("mistral entry not found or wrong value")
	}
}

func TestImporter_InvalidJSON(t *testing.T) {
	_, err := NewImporter(NewInMemoryCache(3600)).Import(strings.NewReader("invalid json"))
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestImporter_UnknownVersion(t *testing.T) {
	_, err := NewImporter(NewInMemoryCache(3600)).Import(strings.NewReader(`{"version":"9.0","entries":[]}`))
	if err == nil {
		t.Error("Expected error for unknown version")
	}
}
