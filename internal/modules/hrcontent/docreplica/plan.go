package docreplica

import (
	"strings"
	"unicode/utf16"

	"google.golang.org/api/docs/v1"
)

const (
	textStyleFields      = "bold,italic,underline,strikethrough,link,foregroundColor"
	documentStyleFields  = "marginTop,marginBottom,marginLeft,marginRight,pageSize"
	paragraphStyleFields = "alignment,namedStyleType"
)

// Plan is the ordered request batch that rebuilds a template in a blank
// document. Cursor is the write index after the last insertion.
type Plan struct {
	Operations []*docs.Request
	Cursor     int64
	// Degenerate lists paragraphs that carry a style or bullet but inserted
	// no text. Their ranges are zero width.
	Degenerate []int
}

// Length returns the length of s in UTF-16 code units, the unit Docs
// indexes are counted in.
func Length(s string) int64 {
	var n int64
	for _, r := range s {
		n += int64(utf16.RuneLen(r))
	}
	return n
}

// BuildPlan replays tpl run by run starting at index 1. Every style range
// covers exactly the characters its insert just wrote, so the batch must be
// applied in order.
func BuildPlan(tpl Template) Plan {
	p := Plan{Cursor: 1}
	for i, para := range tpl.Paragraphs {
		var inserted int64
		for _, run := range para.Runs {
			if run.Text == "" {
				continue
			}
			n := Length(run.Text)
			start := p.Cursor
			p.Operations = append(p.Operations, &docs.Request{
				InsertText: &docs.InsertTextRequest{
					Location: &docs.Location{Index: start},
					Text:     run.Text,
				},
			})
			p.Cursor += n
			inserted += n
			if run.Style != nil {
				p.Operations = append(p.Operations, &docs.Request{
					UpdateTextStyle: &docs.UpdateTextStyleRequest{
						Range:     &docs.Range{StartIndex: start, EndIndex: p.Cursor},
						TextStyle: run.Style.toDocs(),
						Fields:    textStyleFields,
					},
				})
			}
		}

		if para.Style == nil && para.Bullet == nil {
			continue
		}
		// Literal arithmetic: a paragraph that inserted nothing gets [cursor, cursor).
		rng := &docs.Range{StartIndex: p.Cursor - inserted, EndIndex: p.Cursor}
		if inserted == 0 {
			p.Degenerate = append(p.Degenerate, i)
		}
		if para.Style != nil {
			p.Operations = append(p.Operations, &docs.Request{
				UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
					Range: rng,
					ParagraphStyle: &docs.ParagraphStyle{
						Alignment:      para.Style.Alignment,
						NamedStyleType: para.Style.NamedStyleType,
					},
					Fields: paragraphStyleFieldsFor(*para.Style),
				},
			})
		}
		if para.Bullet != nil {
			p.Operations = append(p.Operations, &docs.Request{
				CreateParagraphBullets: &docs.CreateParagraphBulletsRequest{
					Range:        &docs.Range{StartIndex: rng.StartIndex, EndIndex: rng.EndIndex},
					BulletPreset: para.Bullet.Preset,
				},
			})
		}
	}

	if ds := tpl.DocumentStyle; ds != nil {
		p.Operations = append(p.Operations, &docs.Request{
			UpdateDocumentStyle: &docs.UpdateDocumentStyleRequest{
				DocumentStyle: ds.toDocs(),
				Fields:        documentStyleFields,
			},
		})
	}
	return p
}

func paragraphStyleFieldsFor(s ParagraphStyle) string {
	var f []string
	if s.Alignment != "" {
		f = append(f, "alignment")
	}
	if s.NamedStyleType != "" {
		f = append(f, "namedStyleType")
	}
	if len(f) == 0 {
		return paragraphStyleFields
	}
	return strings.Join(f, ",")
}

func (s TextStyle) toDocs() *docs.TextStyle {
	ts := &docs.TextStyle{
		Bold:          s.Bold,
		Italic:        s.Italic,
		Underline:     s.Underline,
		Strikethrough: s.Strikethrough,
	}
	if s.LinkURL != "" {
		ts.Link = &docs.Link{Url: s.LinkURL}
	}
	if c := s.Foreground; c != nil {
		ts.ForegroundColor = &docs.OptionalColor{Color: &docs.Color{
			RgbColor: &docs.RgbColor{Red: c.Red, Green: c.Green, Blue: c.Blue},
		}}
	}
	return ts
}

func (s DocumentStyle) toDocs() *docs.DocumentStyle {
	pt := func(v float64) *docs.Dimension { return &docs.Dimension{Magnitude: v, Unit: "PT"} }
	return &docs.DocumentStyle{
		MarginTop:    pt(s.MarginTop),
		MarginBottom: pt(s.MarginBottom),
		MarginLeft:   pt(s.MarginLeft),
		MarginRight:  pt(s.MarginRight),
		PageSize:     &docs.Size{Width: pt(s.PageWidth), Height: pt(s.PageHeight)},
	}
}
