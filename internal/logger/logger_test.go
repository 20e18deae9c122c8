package logger

import "testing"

func TestSanitizeKVs_RedactsSecrets(t *testing.T) {
	got := sanitizeKVs([]interface{}{"path", "/api/tasks", "api_key", "dev-key", "Authorization", "Bearer x", "dangling"})
	want := []interface{}{"path", "/api/tasks", "api_key", "[REDACTED]", "Authorization", "[REDACTED]", "dangling"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kv[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", ""} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) error: %v", mode, err)
		}
		l.Debug("hello", "mode", mode)
	}
	Nop().Info("discarded")
}
