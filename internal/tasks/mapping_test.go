package tasks

import (
	"testing"

	"github.com/desertthunder/wpx/internal/models"
)

func TestBundleFor(t *testing.T) {
	tests := []struct {
		postType string
		want     string
	}{
		{"page", models.BundlePage},
		{"post", models.BundlePost},
		{"product", models.BundlePost},
		{"", models.BundlePost},
	}

	for _, tt := range tests {
		if got := BundleFor(tt.postType); got != tt.want {
			t.Errorf("BundleFor(%q): expected %q, got %q", tt.postType, tt.want, got)
		}
	}
}

func TestResolveLangcode(t *testing.T) {
	tests := []struct {
		name  string
		meta  models.Meta
		want  string
		found bool
	}{
		{"arabic locale", models.Meta{"_lang": "ar-SA"}, "ar", true},
		{"english word", models.Meta{"lang": "english"}, "en", true},
		{"upper case", models.Meta{"_language": " EN_us "}, "en", true},
		{"priority order", models.Meta{"_lang": "ar", "lang": "en"}, "ar", true},
		{"empty values skipped", models.Meta{"_lang": "  ", "lang": "en-GB"}, "en", true},
		{"unmapped", models.Meta{"_lang": "fr"}, "und", true},
		{"absent", models.Meta{"other": "ar"}, "und", false},
		{"nil meta", nil, "und", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ResolveLangcode(tt.meta)
			if got != tt.want || found != tt.found {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.want, tt.found, got, found)
			}
		})
	}
}

func TestVocabulary(t *testing.T) {
	tests := []struct {
		taxonomy string
		vid      string
		label    string
	}{
		{"category", "wordpress_categories", "Category"},
		{"post_tag", "wordpress_tags", ""},
		{"genre", "wordpress_genre", "Genre"},
	}

	for _, tt := range tests {
		t.Run(tt.taxonomy, func(t *testing.T) {
			v := NewVocabulary(tt.taxonomy)
			if v.VID != tt.vid {
				t.Errorf("expected vid %q, got %q", tt.vid, v.VID)
			}
			if tt.label != "" && v.Name != tt.label {
				t.Errorf("expected label %q, got %q", tt.label, v.Name)
			}
			if v.Description != "Migrated from WordPress "+tt.taxonomy {
				t.Errorf("unexpected description %q", v.Description)
			}
		})
	}
}

func TestDeriveAlias(t *testing.T) {
	tests := []struct {
		name     string
		slug     string
		langcode string
		want     string
		ok       bool
	}{
		{"plain", "hello-world", "en", "/hello-world", true},
		{"arabic prefix", "marhaba", "ar", "/ar/marhaba", true},
		{"undefined language", "hello", "und", "/hello", true},
		{"surrounding slashes", "/nested/path/", "en", "/nested/path", true},
		{"repeated slashes", "a//b///c", "ar", "/ar/a/b/c", true},
		{"empty", "", "en", "", false},
		{"only slashes", "///", "ar", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DeriveAlias(tt.slug, tt.langcode)
			if got != tt.want || ok != tt.ok {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := map[string]string{
		"Hello":     "Hello",
		"  spaced ": "spaced",
		"":          UntitledTitle,
		"   ":       UntitledTitle,
	}

	for in, want := range tests {
		if got := SanitizeTitle(in); got != want {
			t.Errorf("SanitizeTitle(%q): expected %q, got %q", in, want, got)
		}
	}
}
