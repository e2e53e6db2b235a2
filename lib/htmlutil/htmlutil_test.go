package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<html><body><div>hello <b>bold</b> world</div></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "hello bold world", GetText(doc))
}

func TestExtractCDATA(t *testing.T) {
	script := `
//<![CDATA[
var payload = {"a": 1};
//]]>
`
	require.Equal(t, "var payload = {\"a\": 1};\n", ExtractCDATA(script))
}

func TestExtractCDATAWithoutCommentGuard(t *testing.T) {
	script := `<![CDATA[doWork()]]>`
	require.Equal(t, "doWork()", ExtractCDATA(script))
}

func TestExtractCDATAMissing(t *testing.T) {
	require.Equal(t, "", ExtractCDATA("var x = 1;"))
}
