// Package rewrite moves inline scripts out of HTML documents so they can be
// loaded under a Content-Security-Policy that forbids inline code.
package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rewriter replaces inline scripts with references to extracted files.
type Rewriter struct {
	Registry *Registry

	// URLPrefix is prepended to the synthetic file name to build the src
	// attribute, e.g. "/unity-game/".
	URLPrefix string
}

// ScriptName returns the synthetic name of the n-th script extracted from
// the document at filePath.
func ScriptName(filePath string, n int) string {
	return fmt.Sprintf("%s_extracted_script_%d.js", baseDir(filePath), n)
}

func baseDir(filePath string) string {
	i := strings.LastIndexByte(filePath, '/')
	if i < 0 {
		return ""
	}
	return filePath[:i+1]
}

// Rewrite returns doc with every src-less, non-blank <script> replaced by a
// <script src> pointing at a registered extracted script. Every other byte
// of the document is copied unchanged.
func (rw *Rewriter) Rewrite(doc, filePath string) (string, []Script, error) {
	var (
		out     bytes.Buffer
		scripts []Script
	)
	out.Grow(len(doc))

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return out.String(), scripts, nil
			}
			return "", nil, fmt.Errorf("tokenizing %s: %w", filePath, z.Err())
		}

		// Browsers ignore the slash in <script/>, so its body still runs.
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(z.Raw())
			continue
		}

		startRaw := bytes.Clone(z.Raw())
		tok := z.Token()
		if tok.DataAtom != atom.Script {
			out.Write(startRaw)
			continue
		}

		body, endRaw, closed := readScriptBody(z)
		if hasAttr(tok, "src") || strings.TrimSpace(body) == "" || !closed {
			out.Write(startRaw)
			out.WriteString(body)
			out.Write(endRaw)
			continue
		}

		s := Script{Name: ScriptName(filePath, len(scripts)), Body: body}
		if rw.Registry != nil {
			rw.Registry.Register(s.Name, s.Body)
		}
		scripts = append(scripts, s)

		tok.Type = html.StartTagToken
		tok.Attr = append(tok.Attr, html.Attribute{Key: "src", Val: rw.URLPrefix + s.Name})
		out.WriteString(tok.String())
		out.WriteString("</script>")
	}
}

// readScriptBody consumes tokens up to and including the closing </script>.
// It returns the raw body, the raw end tag and whether the end tag was found.
func readScriptBody(z *html.Tokenizer) (string, []byte, bool) {
	var body strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return body.String(), nil, false
		case html.EndTagToken:
			raw := bytes.Clone(z.Raw())
			if name, _ := z.TagName(); atom.Lookup(name) == atom.Script {
				return body.String(), raw, true
			}
			body.Write(raw)
		default:
			body.Write(z.Raw())
		}
	}
}

func hasAttr(tok html.Token, key string) bool {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}
