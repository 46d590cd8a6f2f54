package browser

import (
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rotisserie/eris"
)

// minArticleChars is the shortest readability result accepted before the
// whole page is converted instead.
const minArticleChars = 200

// TextExtractor turns rendered HTML into plain text for extraction prompts.
type TextExtractor struct {
	md     *converter.Converter
	policy *bluemonday.Policy
}

// NewTextExtractor builds the converter once; it is safe for concurrent use.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// PageText returns the page's title and main content. Readability handles
// article-like pages; company homepages often fail its heuristics, so the
// sanitized full page is converted to markdown as a fallback.
func (e *TextExtractor) PageText(html, pageURL string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", eris.New("browser: empty html")
	}
	u, _ := url.Parse(pageURL)

	var title string
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err == nil {
		title = strings.TrimSpace(article.Title())
		var b strings.Builder
		if rerr := article.RenderText(&b); rerr == nil {
			text := normalizeSpace(b.String())
			if len(text) >= minArticleChars {
				return withTitle(title, text), nil
			}
		}
	}

	clean := e.policy.Sanitize(html)
	md, err := e.md.ConvertString(clean, converter.WithDomain(pageURL))
	if err != nil {
		return "", eris.Wrap(err, "browser: convert html")
	}
	return withTitle(title, normalizeSpace(md)), nil
}

func withTitle(title, text string) string {
	if title == "" || strings.HasPrefix(text, title) {
		return text
	}
	return "Title: " + title + "\n" + text
}

// normalizeSpace collapses runs of blank lines and trims each line.
func normalizeSpace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
