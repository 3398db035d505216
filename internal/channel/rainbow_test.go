package channel

import (
	"reflect"
	"sync"
	"testing"
)

func TestDictionary_StableAndUnique(t *testing.T) {
	first := Dictionary()
	second := Dictionary()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("dictionary order must be stable")
	}
	if len(first) < 300 {
		t.Fatalf("expected a few hundred candidates, got %d", len(first))
	}
	if first[0] != "LongFast" {
		t.Fatalf("expected presets first, got %q", first[0])
	}

	seen := make(map[string]struct{}, len(first))
	for _, name := range first {
		if _, ok := seen[name]; ok {
			t.Fatalf("duplicate dictionary entry %q", name)
		}
		seen[name] = struct{}{}
	}
	for _, want := range []string{"longfast", "LONGFAST", "MediumFast", "admin"} {
		if _, ok := seen[want]; !ok {
			t.Fatalf("expected dictionary to contain %q", want)
		}
	}
}

func TestBuildTable_DeterministicBuckets(t *testing.T) {
	psk, _ := DecodePSK(DefaultPSK)
	a, err := BuildTable(Dictionary(), psk)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	b, err := BuildTable(Dictionary(), psk)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	for h := 0; h < 256; h++ {
		if !reflect.DeepEqual(a.Lookup(h), b.Lookup(h)) {
			t.Fatalf("bucket 0x%02x differs between builds", h)
		}
	}
	if a.Len() != len(Dictionary()) {
		t.Fatalf("table must hold every name once: got %d want %d", a.Len(), len(Dictionary()))
	}
}

func TestBuildTable_BucketsKeepDictionaryOrder(t *testing.T) {
	names := []string{"ab", "ba", "zz", "AB"}
	table, err := BuildTable(names, nil)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	got := table.Lookup(int('a' ^ 'b'))
	want := []string{"ab", "ba"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected bucket: got %v want %v", got, want)
	}
}

func TestRainbowService_Candidates(t *testing.T) {
	svc := NewRainbowService("MyPrivateNet")

	got := svc.Candidates(0x08, DefaultPSK)
	if !containsName(got, "LongFast") {
		t.Fatalf("expected LongFast among candidates for 0x08, got %v", got)
	}
	for _, name := range got {
		h, err := HashBase64(name, DefaultPSK)
		if err != nil || h != 0x08 {
			t.Fatalf("candidate %q hashes to 0x%02x", name, h)
		}
	}

	h, _ := HashBase64("MyPrivateNet", DefaultPSK)
	if !containsName(svc.Candidates(int(h), DefaultPSK), "MyPrivateNet") {
		t.Fatalf("expected extra name to be part of the table")
	}
}

func TestRainbowService_EmptyResults(t *testing.T) {
	svc := NewRainbowService()
	tests := []struct {
		name string
		hash int
		psk  string
	}{
		{name: "negative hash", hash: -1, psk: DefaultPSK},
		{name: "hash above byte", hash: 256, psk: DefaultPSK},
		{name: "invalid base64", hash: 8, psk: "***"},
		{name: "unknown alias", hash: 8, psk: "Bw=="},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := svc.Candidates(tc.hash, tc.psk)
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil list, got %#v", got)
			}
		})
	}
	if svc.Cached() != 0 {
		t.Fatalf("invalid lookups must not populate the cache")
	}
}

func TestRainbowService_CachesPerPSK(t *testing.T) {
	svc := NewRainbowService()
	first, err := svc.Table(DefaultPSK)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	second, err := svc.Table(DefaultPSK)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if first != second {
		t.Fatalf("expected cached table to be reused")
	}
	if _, err := svc.Table("AQI="); err != nil {
		t.Fatalf("table for second psk: %v", err)
	}
	if svc.Cached() != 2 {
		t.Fatalf("expected two cached tables, got %d", svc.Cached())
	}
}

func TestRainbowService_ConcurrentFirstLookupsConverge(t *testing.T) {
	svc := NewRainbowService()
	const workers = 16

	tables := make([]*Table, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := svc.Table(DefaultPSK)
			if err != nil {
				t.Errorf("table: %v", err)
				return
			}
			tables[i] = tbl
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if tables[i] != tables[0] {
			t.Fatalf("worker %d received a different table instance", i)
		}
	}
	if svc.Cached() != 1 {
		t.Fatalf("expected a single cached table, got %d", svc.Cached())
	}
}

func containsName(names []string, want string) bool {
	for _, name := range names {
		if name == want {
			return true
		}
	}

	return false
}
