package whisper

import "testing"

func TestAvailabilityCacheUnknownModel(t *testing.T) {
	cache := NewAvailabilityCache()

	if _, known := cache.Lookup("tiny"); known {
		t.Fatal("expected unknown model before any probe")
	}
}

func TestAvailabilityCacheRecordsNegative(t *testing.T) {
	cache := NewAvailabilityCache()
	cache.Record("large", false)

	available, known := cache.Lookup("large")
	if !known {
		t.Fatal("expected entry after negative record")
	}
	if available {
		t.Fatal("expected negative entry to report unavailable")
	}
}

func TestAvailabilityCachePositiveIsSticky(t *testing.T) {
	cache := NewAvailabilityCache()
	cache.Record("base", false)
	cache.Record("base", true)
	cache.Record("base", false)

	available, known := cache.Lookup("base")
	if !known || !available {
		t.Fatalf("expected available=true to survive later negative records, got available=%v known=%v", available, known)
	}
}

func TestAvailabilityCacheSnapshot(t *testing.T) {
	cache := NewAvailabilityCache()
	cache.Record("tiny", true)
	cache.Record("large", false)

	snapshot := cache.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snapshot))
	}
	if !snapshot["tiny"] || snapshot["large"] {
		t.Fatalf("unexpected snapshot contents: %v", snapshot)
	}

	snapshot["tiny"] = false
	if available, _ := cache.Lookup("tiny"); !available {
		t.Fatal("mutating a snapshot must not affect the cache")
	}
}
