package fontbuild

import (
	"fmt"
	"html/template"
	"os"

	"glyphsheet/internal/config"
	"glyphsheet/internal/failure"
)

var previewTmpl = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Family}}</title>
<style type="text/css">
  @font-face {
    font-family: '{{.Family}}';
    src: url('{{.Font}}');
  }
  .sample {
    font-family: '{{.Family}}';
    font-size: 48px;
  }
  h1, th, td.code {
    font-family: sans-serif;
  }
</style>
</head>
<body>
<h1>{{.Family}}</h1>
<p class="sample">{{.Sample}}</p>
<table>
  <tr><th>name</th><th>codepoint</th><th>typed</th><th>glyph</th></tr>
{{- range .Glyphs}}
  <tr><td class="code">{{.Name}}</td><td class="code">{{.Codepoint}}</td><td class="code">{{.Typed}}</td><td class="sample">{{.Text}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

type previewGlyph struct {
	Name      string
	Codepoint string
	Typed     string // ligature input
	Text      string // what the glyph renders from
}

type previewPage struct {
	Family string
	Font   string
	Sample string
	Glyphs []previewGlyph
}

func newPreviewPage(font, family string, slots []config.GlyphSlot) previewPage {
	page := previewPage{Family: family, Font: font}
	var sample []rune
	for _, s := range slots {
		if !s.Named() {
			continue
		}
		g := previewGlyph{Name: s.Name, Typed: s.LigatureText()}
		if s.Codepoint != 0 {
			g.Codepoint = fmt.Sprintf("U+%04X", s.Codepoint)
			g.Text = string(s.Codepoint)
			sample = append(sample, s.Codepoint)
		} else {
			g.Text = g.Typed
		}
		page.Glyphs = append(page.Glyphs, g)
	}
	page.Sample = string(sample)
	return page
}

// WritePreview writes an HTML page rendering every named glyph with the
// compiled font, which is referenced relative to the page.
func WritePreview(path, font, family string, slots []config.GlyphSlot) error {
	f, err := os.Create(path)
	if err != nil {
		return failure.IO("write preview", path, err)
	}
	defer f.Close()
	if err := previewTmpl.Execute(f, newPreviewPage(font, family, slots)); err != nil {
		return failure.IO("write preview", path, err)
	}
	return nil
}
