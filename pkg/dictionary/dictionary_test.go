package dictionary

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeDictionary(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dictionary.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestText(t *testing.T) {
	d, err := New(writeDictionary(t, `{
		"ru": {"reward": "Получено {{.Reward}} монет", "hello": "Привет, {{.Name}}!"},
		"en": {"reward": "You got {{.Reward}} coins"}
	}`))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if got := d.Text("en", "reward", map[string]any{"Reward": int64(1500)}); got != "You got 1 500 coins" {
		t.Errorf("en reward = %q", got)
	}
	if got := d.Text("ru", "reward", map[string]any{"Reward": 10}); got != "Получено 10 монет" {
		t.Errorf("ru reward = %q", got)
	}
	if got := d.Text("ru", "hello", map[string]any{"Name": "<b>"}); got != "Привет, &lt;b&gt;!" {
		t.Errorf("hello did not escape html: %q", got)
	}
}

func TestTextFallbacks(t *testing.T) {
	d, err := New(writeDictionary(t, `{"ru": {"start": "Старт"}}`))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if got := d.Text("de", "start"); got != "Старт" {
		t.Errorf("unknown language should fall back to %s, got %q", DefaultLanguage, got)
	}
	if got := d.Text("ru", "missing"); got != "" {
		t.Errorf("missing key = %q, want empty", got)
	}
}

func TestTextDoesNotMutateValues(t *testing.T) {
	d, err := New(writeDictionary(t, `{"ru": {"price": "{{.Price}}"}}`))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	values := map[string]any{"Price": 25000}
	d.Text("ru", "price", values)

	if values["Price"] != 25000 {
		t.Errorf("values were modified: %v", values)
	}
}

func TestNewRequiresDefaultLanguage(t *testing.T) {
	if _, err := New(writeDictionary(t, `{"en": {}}`)); err == nil {
		t.Fatal("expected error for dictionary without default language")
	}
}

func TestLanguages(t *testing.T) {
	d, err := New(writeDictionary(t, `{"ru": {}, "en": {}}`))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if got := d.Languages(); !reflect.DeepEqual(got, []string{"en", "ru"}) {
		t.Errorf("Languages() = %v", got)
	}
}
