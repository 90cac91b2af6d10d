package params

import "testing"

func TestMap_Get(t *testing.T) {
	m := New(map[string]Value{
		"port":       Uint(6379),
		"dir":        Path("/var/lib/minikv"),
		"dbfilename": String("dump.rdb"),
	})

	tests := []struct {
		name string
		want Value
		ok   bool
	}{
		{"port", Uint(6379), true},
		{"dir", Path("/var/lib/minikv"), true},
		{"dbfilename", String("dump.rdb"), true},
		{"maxmemory", Value{}, false},
		{"", Value{}, false},
	}

	for _, tt := range tests {
		got, ok := m.Get(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Get(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}

	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestNew_CopiesInput(t *testing.T) {
	src := map[string]Value{"port": Uint(6379)}
	m := New(src)

	src["port"] = Uint(9999)
	src["extra"] = String("x")

	if v, _ := m.Get("port"); v.Uint != 6379 {
		t.Errorf("mutating the source map leaked into the lookup: %v", v)
	}
	if _, ok := m.Get("extra"); ok {
		t.Error("mutating the source map leaked a new key into the lookup")
	}
}
