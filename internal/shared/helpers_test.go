package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripBOM(t *testing.T) {
	assert.Equal(t, []byte("{}"), StripBOM([]byte("\xEF\xBB\xBF{}")))
	assert.Equal(t, []byte("{}"), StripBOM([]byte("{}")))
	assert.Equal(t, "line", StripBOMString("\uFEFFline"))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "git.git", NormalizeKey("  Git.Git "))
}

func TestHTTPStatusError(t *testing.T) {
	assert.EqualError(t, HTTPStatusError(404, "https://a.example/x.exe"), "status=404 url=https://a.example/x.exe")
}

func TestPSQuote(t *testing.T) {
	assert.Equal(t, "'C:\\Users\\o''brien\\pkg'", PSQuote(`C:\Users\o'brien\pkg`))
}
