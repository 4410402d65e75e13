package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TEST_GEMINI_KEY", "from-env")

	got, err := Load(Source{Name: "gemini api key", Value: "inline", Env: "TEST_GEMINI_KEY", File: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadEnvThenValue(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", " from-env ")
	if got, _ := Load(Source{Value: "inline", Env: "TEST_GEMINI_KEY"}); got != "from-env" {
		t.Fatalf("expected env secret, got %q", got)
	}

	t.Setenv("TEST_GEMINI_KEY", "")
	if got, _ := Load(Source{Value: " inline ", Env: "TEST_GEMINI_KEY"}); got != "inline" {
		t.Fatalf("expected inline secret, got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cases := []struct {
		src      Source
		contains string
	}{
		{Source{Name: "token", File: empty}, "is empty"},
		{Source{Name: "token", File: filepath.Join(t.TempDir(), "missing")}, "reading token"},
		{Source{}, "secret is not configured"},
		{Source{Name: "key", Env: "TEST_SURELY_UNSET_VARIABLE"}, "checked TEST_SURELY_UNSET_VARIABLE"},
	}
	for _, tc := range cases {
		if _, err := Load(tc.src); err == nil || !strings.Contains(err.Error(), tc.contains) {
			t.Fatalf("Load(%+v) error = %v, want %q", tc.src, err, tc.contains)
		}
	}
}
