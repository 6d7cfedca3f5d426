package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

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

// ContainsText reports whether the document's visible text contains the
// needle, ignoring case.
func ContainsText(doc *goquery.Document, needle string) bool {
	needle = strings.ToLower(needle)
	found := false
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		for _, n := range sel.Nodes {
			if strings.Contains(strings.ToLower(GetText(n)), needle) {
				found = true
				return
			}
		}
	})
	return found
}

// HasSelector reports whether any of the given selectors matches at
// least one node.
func HasSelector(doc *goquery.Document, selectors ...string) bool {
	for _, s := range selectors {
		if len(doc.Find(s).Nodes) > 0 {
			return true
		}
	}
	return false
}
