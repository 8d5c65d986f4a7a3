package extract

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// markdownConverter sanitizes a content region and converts it to
// markdown for the scraped_content payload. Conversion is best-effort:
// any failure yields an empty string, never an error.
type markdownConverter struct {
	policy *bluemonday.Policy
	conv   *converter.Converter
}

func newMarkdownConverter() *markdownConverter {
	return &markdownConverter{
		policy: bluemonday.UGCPolicy(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// convert returns the markdown rendering of regionHTML, or "" when the
// region is empty or conversion fails.
func (mc *markdownConverter) convert(regionHTML, sourceURL string) string {
	if strings.TrimSpace(regionHTML) == "" {
		return ""
	}
	clean := mc.policy.Sanitize(regionHTML)
	result, err := mc.conv.ConvertString(clean, converter.WithDomain(sourceURL))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(result)
}
