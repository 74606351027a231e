package i18n

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// 支持的界面语言；第一个是回退语言
// supported lists the UI languages; the first one is the fallback.
var supported = []language.Tag{language.English, language.BrazilianPortuguese}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]map[string]string{
	language.BrazilianPortuguese: PtBRMessages,
}

// I18n 界面文案目录
// I18n is an immutable message catalog for one UI language. Keys missing from
// the language overlay fall back to English.
type I18n struct {
	tag      language.Tag
	messages map[string]string
}

// New 按 locale 构建目录；空值时读取环境变量
// New builds the catalog for locale. An empty locale is read from the environment.
func New(locale string) *I18n {
	if strings.TrimSpace(locale) == "" {
		locale = DetectLocale()
	}
	tag := Match(locale)

	messages := make(map[string]string, len(EnMessages))
	for k, v := range EnMessages {
		messages[k] = v
	}
	for k, v := range catalogs[tag] {
		messages[k] = v
	}
	return &I18n{tag: tag, messages: messages}
}

// T 翻译；未知键原样返回
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Locale returns the BCP 47 tag of the matched language, e.g. "pt-BR".
func (i *I18n) Locale() string {
	return i.tag.String()
}

// Match maps a POSIX or BCP 47 locale ("pt_BR.UTF-8", "pt-PT", "en") to one of
// the supported languages. Unknown locales map to English.
func Match(locale string) language.Tag {
	s := strings.TrimSpace(locale)
	// 去掉 .UTF-8 与 @modifier 后缀
	if idx := strings.IndexAny(s, ".@"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" || strings.EqualFold(s, "C") || strings.EqualFold(s, "POSIX") {
		return supported[0]
	}
	tag, err := language.Parse(s)
	if err != nil {
		return supported[0]
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}

// DetectLocale returns the first non-empty locale variable.
func DetectLocale() string {
	for _, env := range []string{"LENAI_LANG", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return "en"
}
