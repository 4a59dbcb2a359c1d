package fetch

import "regexp"

// maxContentChars bounds the text sent to the model, capping token cost
// and latency per extraction.
const maxContentChars = 15000

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// Condense strips script and style blocks from HTML, collapses whitespace
// runs to single spaces, and truncates to the content budget.
func Condense(html string) string {
	html = scriptRe.ReplaceAllString(html, " ")
	html = styleRe.ReplaceAllString(html, " ")
	html = spaceRe.ReplaceAllString(html, " ")

	runes := []rune(html)
	if len(runes) > maxContentChars {
		return string(runes[:maxContentChars])
	}
	return html
}
