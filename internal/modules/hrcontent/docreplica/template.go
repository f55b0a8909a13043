package docreplica

import (
	"google.golang.org/api/docs/v1"
)

// Template is the read-only paragraph/run tree of a template document.
type Template struct {
	DocumentID    string
	Paragraphs    []Paragraph
	DocumentStyle *DocumentStyle
}

type Paragraph struct {
	Runs   []Run
	Style  *ParagraphStyle
	Bullet *Bullet
}

type Run struct {
	Text  string
	Style *TextStyle
}

type Color struct {
	Red, Green, Blue float64
}

type TextStyle struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	LinkURL       string
	Foreground    *Color
}

func (s TextStyle) empty() bool {
	return !s.Bold && !s.Italic && !s.Underline && !s.Strikethrough && s.LinkURL == "" && s.Foreground == nil
}

type ParagraphStyle struct {
	Alignment      string
	NamedStyleType string
}

type Bullet struct {
	Preset string
}

type DocumentStyle struct {
	MarginTop, MarginBottom, MarginLeft, MarginRight float64
	PageWidth, PageHeight                            float64
}

const (
	presetBullets  = "BULLET_DISC_CIRCLE_SQUARE"
	presetNumbered = "NUMBERED_DECIMAL_ALPHA_ROMAN"
	presetChecks   = "BULLET_CHECKBOX"
)

// FromDocument reads the body paragraphs of a Docs document. Tables, section
// breaks and other structural elements are not replicated.
func FromDocument(d *docs.Document) Template {
	tpl := Template{DocumentID: d.DocumentId}
	if d.Body != nil {
		for _, el := range d.Body.Content {
			if el == nil || el.Paragraph == nil {
				continue
			}
			tpl.Paragraphs = append(tpl.Paragraphs, paragraphFrom(d, el.Paragraph))
		}
	}
	tpl.DocumentStyle = documentStyleFrom(d.DocumentStyle)
	return tpl
}

func paragraphFrom(d *docs.Document, p *docs.Paragraph) Paragraph {
	var out Paragraph
	for _, pe := range p.Elements {
		if pe == nil || pe.TextRun == nil {
			continue
		}
		out.Runs = append(out.Runs, Run{Text: pe.TextRun.Content, Style: textStyleFrom(pe.TextRun.TextStyle)})
	}
	if ps := p.ParagraphStyle; ps != nil {
		// NORMAL_TEXT with default alignment is what a blank document already has.
		if (ps.Alignment != "" && ps.Alignment != "START") || (ps.NamedStyleType != "" && ps.NamedStyleType != "NORMAL_TEXT") {
			out.Style = &ParagraphStyle{Alignment: ps.Alignment, NamedStyleType: ps.NamedStyleType}
		}
	}
	if p.Bullet != nil {
		out.Bullet = &Bullet{Preset: bulletPreset(d, p.Bullet)}
	}
	return out
}

func textStyleFrom(ts *docs.TextStyle) *TextStyle {
	if ts == nil {
		return nil
	}
	s := TextStyle{
		Bold:          ts.Bold,
		Italic:        ts.Italic,
		Underline:     ts.Underline,
		Strikethrough: ts.Strikethrough,
	}
	if ts.Link != nil {
		s.LinkURL = ts.Link.Url
	}
	if ts.ForegroundColor != nil && ts.ForegroundColor.Color != nil && ts.ForegroundColor.Color.RgbColor != nil {
		c := ts.ForegroundColor.Color.RgbColor
		s.Foreground = &Color{Red: c.Red, Green: c.Green, Blue: c.Blue}
	}
	if s.empty() {
		return nil
	}
	return &s
}

func bulletPreset(d *docs.Document, b *docs.Bullet) string {
	list, ok := d.Lists[b.ListId]
	if !ok || list.ListProperties == nil || len(list.ListProperties.NestingLevels) == 0 {
		return presetBullets
	}
	level := list.ListProperties.NestingLevels[0]
	switch {
	case level.GlyphType == "DECIMAL" || level.GlyphType == "ALPHA" || level.GlyphType == "ROMAN" ||
		level.GlyphType == "UPPER_ALPHA" || level.GlyphType == "UPPER_ROMAN":
		return presetNumbered
	case level.GlyphType == "GLYPH_TYPE_UNSPECIFIED" && level.GlyphSymbol == "☐":
		return presetChecks
	default:
		return presetBullets
	}
}

func documentStyleFrom(ds *docs.DocumentStyle) *DocumentStyle {
	if ds == nil {
		return nil
	}
	out := DocumentStyle{
		MarginTop:    dimension(ds.MarginTop),
		MarginBottom: dimension(ds.MarginBottom),
		MarginLeft:   dimension(ds.MarginLeft),
		MarginRight:  dimension(ds.MarginRight),
	}
	if ds.PageSize != nil {
		out.PageWidth = dimension(ds.PageSize.Width)
		out.PageHeight = dimension(ds.PageSize.Height)
	}
	if out == (DocumentStyle{}) {
		return nil
	}
	return &out
}

func dimension(d *docs.Dimension) float64 {
	if d == nil {
		return 0
	}
	return d.Magnitude
}
