package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name string
		slug string
		want bool
	}{
		{"single word", "about", true},
		{"hyphenated", "team-history", true},
		{"with digits", "season-2024", true},
		{"empty string", "", false},
		{"too long", string(make([]byte, 101)), false},
		{"uppercase", "About", false},
		{"leading hyphen", "-about", false},
		{"trailing hyphen", "about-", false},
		{"double hyphen", "about--us", false},
		{"contains space", "about us", false},
		{"contains slash", "about/us", false},
		{"path traversal attempt", "../etc/passwd", false},
		{"underscore", "about_us", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSlug(tt.slug))
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	assert.Equal(t, "about-us", NormalizeSlug("  About-Us "))
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		valid   bool
		wantMsg string
	}{
		{"valid https", "https://example.com", true, ""},
		{"valid http", "http://example.com", true, ""},
		{"valid with path", "https://example.com/path/to/page", true, ""},
		{"valid with port", "https://example.com:8080", true, ""},
		{"empty string", "", false, "URL is required"},
		{"javascript scheme", "javascript:alert(1)", false, "URL must use http:// or https:// scheme"},
		{"data scheme", "data:text/html,<script>alert(1)</script>", false, "URL must use http:// or https:// scheme"},
		{"ftp scheme", "ftp://example.com", false, "URL must use http:// or https:// scheme"},
		{"no scheme", "example.com", false, "URL must use http:// or https:// scheme"},
		{"uppercase scheme", "HTTPS://example.com", true, ""},
		{"scheme only", "https://", false, "URL must have a valid host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateURL(tt.url)
			assert.Equal(t, tt.valid, valid)
			if !valid {
				assert.Equal(t, tt.wantMsg, msg)
			}
		})
	}
}

type sample struct {
	Year  int    `json:"year" validate:"required,min=1992,max=2100"`
	Name  string `json:"name" validate:"required,max=5"`
	Slug  string `json:"slug,omitempty" validate:"omitempty,slug"`
	Image string `json:"image_url,omitempty" validate:"omitempty,weburl"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		in        sample
		wantField string
		wantMsg   string
	}{
		{"valid", sample{Year: 2024, Name: "Apex"}, "", ""},
		{"missing year", sample{Name: "Apex"}, "year", "is required"},
		{"year too small", sample{Year: 1800, Name: "Apex"}, "year", "must be at least 1992"},
		{"missing name", sample{Year: 2024}, "name", "is required"},
		{"name too long", sample{Year: 2024, Name: "Apex-2"}, "name", "must be at most 5 characters"},
		{"bad slug", sample{Year: 2024, Name: "Apex", Slug: "Not A Slug"}, "slug", "must contain only lowercase letters, numbers and hyphens"},
		{"bad url", sample{Year: 2024, Name: "Apex", Image: "javascript:alert(1)"}, "image_url", "URL must use http:// or https:// scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			err := Struct(&in)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, tt.wantMsg, verr.Message)
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	out := SanitizeHTML(`<p onclick="steal()">Hello <b>team</b></p><script>alert(1)</script>`)
	assert.Contains(t, out, "<b>team</b>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
}

func TestError(t *testing.T) {
	assert.Equal(t, "slug: already in use", Errorf("slug", "already in use").Error())
	assert.Equal(t, "bad input", (&Error{Message: "bad input"}).Error())
}
