package htmlutil

import (
	"bytes"
	"regexp"

	"golang.org/x/net/html"
)

// GetText concatenates every text node under the given node.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var cdataRegex = regexp.MustCompile(`(?s)<!\[CDATA\[\s*(.*?)(?://)?\]\]>`)

// ExtractCDATA pulls the script body out of an inline
// `//<![CDATA[ ... //]]>` wrapper, returning "" when the wrapper is
// absent.
func ExtractCDATA(script string) string {
	groups := cdataRegex.FindStringSubmatch(script)
	if len(groups) < 2 {
		return ""
	}
	return groups[1]
}
