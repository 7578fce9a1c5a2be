package tasks

import (
	"regexp"
	"strings"

	"github.com/desertthunder/wpx/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UntitledTitle names content whose legacy title is empty.
const UntitledTitle = "(untitled)"

// LangMetaKeys are the post meta keys holding a language, in priority order.
var LangMetaKeys = []string{"_lang", "lang", "_language"}

var slashRuns = regexp.MustCompile(`/+`)

// BundleFor maps a legacy post type to its content bundle.
func BundleFor(postType string) string {
	if postType == "page" {
		return models.BundlePage
	}
	return models.BundlePost
}

// MapLangcode maps a legacy language or locale value to a langcode by prefix: "ar", "en", otherwise "und".
func MapLangcode(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasPrefix(value, "ar"):
		return "ar"
	case strings.HasPrefix(value, "en"):
		return "en"
	default:
		return models.LangUndefined
	}
}

// ResolveLangcode reads the first non-empty language meta value and maps it.
//
// Without any language meta it returns "und" and false.
func ResolveLangcode(meta models.Meta) (string, bool) {
	value := meta.First(LangMetaKeys...)
	if value == "" {
		return models.LangUndefined, false
	}
	return MapLangcode(value), true
}

// VocabularyID names the vocabulary that holds a legacy taxonomy.
func VocabularyID(taxonomy string) string {
	switch taxonomy {
	case "category":
		return "wordpress_categories"
	case "post_tag":
		return "wordpress_tags"
	default:
		return "wordpress_" + taxonomy
	}
}

// VocabularyLabel is the human name of the vocabulary created for taxonomy.
func VocabularyLabel(taxonomy string) string {
	return cases.Title(language.Und, cases.NoLower).String(taxonomy)
}

// NewVocabulary builds the vocabulary created on first use of taxonomy.
func NewVocabulary(taxonomy string) models.Vocabulary {
	return models.Vocabulary{
		VID:         VocabularyID(taxonomy),
		Name:        VocabularyLabel(taxonomy),
		Description: "Migrated from WordPress " + taxonomy,
	}
}

// DeriveAlias builds the public alias of a post from its slug.
//
// Arabic content is prefixed with "/ar". An empty slug, or one that reduces to "/", yields no alias.
func DeriveAlias(slug, langcode string) (string, bool) {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" {
		return "", false
	}

	prefix := ""
	if langcode == "ar" {
		prefix = "/ar"
	}

	alias := slashRuns.ReplaceAllString(prefix+"/"+slug, "/")
	if alias == "/" {
		return "", false
	}
	return alias, true
}

// SanitizeTitle trims a legacy title, substituting [UntitledTitle] when nothing is left.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return UntitledTitle
	}
	return title
}
