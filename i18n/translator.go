package i18n

import (
	"sort"
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "type" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"unknown_type":     "unknown resource type {type}",
		"type_mismatch":    "resource of type {type} does not match the expected type",
		"invalid_resource": "resource is not an object",
		"invalid_value":    "attribute {field} could not be converted",
		"invalid_id":       "id could not be converted",
		"duplicate_member": "member {field} is duplicated; the last value is used",
	},
	"ja": {
		"unknown_type":     "未知のリソース型です: {type}",
		"type_mismatch":    "リソース型 {type} は期待された型と一致しません",
		"invalid_resource": "リソースがオブジェクトではありません",
		"invalid_value":    "属性 {field} を変換できません",
		"invalid_id":       "ID を変換できません",
		"duplicate_member": "メンバー {field} が重複しています。最後の値を使用します",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	// single pass: substituted values are never rescanned for placeholders
	oldnew := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		oldnew = append(oldnew, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(oldnew...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
