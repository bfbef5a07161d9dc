package dictionary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"sort"

	"github.com/leonid6372/cars-bot/pkg/format"
	"github.com/leonid6372/cars-bot/pkg/log"
	"go.uber.org/zap"
)

const DefaultLanguage = "ru"

type Dictionary struct {
	dictionary map[string]map[string]string // map[language_code]map[key]value

	digitSeparator   string
	decimalSeparator string
}

// New loads a JSON file shaped as {"<lang>": {"<key>": "<template>"}}.
func New(path string) (*Dictionary, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var dictionary map[string]map[string]string
	if err := json.Unmarshal(file, &dictionary); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary %s: %w", path, err)
	}

	if _, ok := dictionary[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("dictionary %s has no default language %q", path, DefaultLanguage)
	}

	return &Dictionary{
		dictionary:       dictionary,
		digitSeparator:   " ",
		decimalSeparator: ",",
	}, nil
}

func (d *Dictionary) Languages() []string {
	langs := make([]string, 0, len(d.dictionary))

	for lang := range d.dictionary {
		langs = append(langs, lang)
	}

	sort.Strings(langs)

	return langs
}

// Text renders the template stored under key. Unknown languages fall back to
// DefaultLanguage, unknown keys render as "".
func (d *Dictionary) Text(lang, key string, values ...map[string]any) string {
	texts, ok := d.dictionary[lang]
	if !ok {
		texts = d.dictionary[DefaultLanguage]
	}

	text, ok := texts[key]
	if !ok {
		log.Error("Text: value not found", zap.String("lang", lang), zap.String("key", key))
		return ""
	}

	tmpl, err := template.New(key).Parse(text)
	if err != nil {
		return text
	}

	valuesMap := make(map[string]any)
	if len(values) > 0 {
		for key, value := range values[0] {
			valuesMap[key] = value
		}
	}

	// format numeric types in values
	for key, value := range valuesMap {
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			valuesMap[key] = format.PrettyNumber(v, d.digitSeparator, d.decimalSeparator)
		}
	}

	byteText := new(bytes.Buffer)
	if err = tmpl.Execute(byteText, valuesMap); err != nil {
		log.Error("Text: failed to execute template", zap.Error(err))
		return text
	}

	return byteText.String()
}
