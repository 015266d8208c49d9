package tools

import (
	"fmt"
	"io"

	. "github.com/patmalib/patma/util/testutil"

	md "github.com/russross/blackfriday/v2"
)

func RenderCorpusHTML(c *Corpus, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="corpusDoc doc">%s</div>`, md.Run([]byte(c.Doc)))

	if 0 < len(c.Types) {
		f(`<div class="types"><table>`)
		for _, name := range typeNames(c.Types) {
			f(`<tr><td><code>%s</code></td><td><code>%s</code></td></tr>`,
				name, JS(c.Types[name]))
		}
		f(`</table></div>`)
	}

	f(`<div class="examples"><table>`)
	for _, e := range c.Examples {
		f(`<tr class="example"><td><span id="%s" class="exampleTitle">%s</span></td><td>`,
			e.Title, e.Title)
		if e.Doc != "" {
			f(`<div class="exampleDoc doc">%s</div>`, md.Run([]byte(e.Doc)))
		}
		f(`<table>`)
		f(`<tr><td>pattern</td><td><code>%s</code></td></tr>`, JS(e.Pattern))
		f(`<tr><td>value</td><td><code>%s</code></td></tr>`, JS(e.Value))
		if e.NoMatch {
			f(`<tr><td>result</td><td>no match</td></tr>`)
		} else {
			f(`<tr><td>bindings</td><td><code>%s</code></td></tr>`, JS(e.Bindings))
		}
		f(`</table>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

func RenderCorpusPage(c *Corpus, out io.Writer, cssFiles []string) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/corpus-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, c.Name)

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, c.Name)

	if err := RenderCorpusHTML(c, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

func ReadAndRenderCorpusPage(filename string, cssFiles []string, out io.Writer) error {
	c, err := ReadCorpus(filename)
	if err != nil {
		return err
	}

	if err := c.Validate(); err != nil {
		return err
	}

	return RenderCorpusPage(c, out, cssFiles)
}
