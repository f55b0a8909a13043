package flatten

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/schema"
)

func mustDoc(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return m
}

func TestFormatBullets(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"empty", []any{}, "<ul>\n</ul>"},
		{"two", []any{"a", "b"}, "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>"},
		{"not a list", "not a list", "N/A"},
		{"absent", nil, "N/A"},
		{"escaped", []any{"<b>x</b>"}, "<ul>\n  <li>&lt;b&gt;x&lt;/b&gt;</li>\n</ul>"},
		{"nested", []any{[]any{"SQL", "Python"}, "R & D"}, "<ul>\n  <li>SQL, Python</li>\n  <li>R &amp; D</li>\n</ul>"},
		{"nested escaped after join", []any{[]any{"<a>", "b"}}, "<ul>\n  <li>&lt;a&gt;, b</li>\n</ul>"},
		{"strings", []string{"x"}, "<ul>\n  <li>x</li>\n</ul>"},
	}
	for _, tc := range cases {
		if got := FormatBullets(tc.in); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func kpiLayout() Layout {
	return Layout{Groups: []ColumnGroup{
		{Policy: SingleFieldWithDefault, Column: "kpis", Path: "kpis", Default: NA},
		{Policy: FixedWidthPadded, Path: "kpis_focus", Slots: 3, SubFields: []SubField{
			{Name: "focus_area", Column: "kpis_focus_%d", Default: "KPI"},
			{Name: "description", Column: "description_%d", Default: NA},
		}},
		{Policy: Constant, Column: "link"},
	}}
}

func TestFixedWidthPaddedOneEntry(t *testing.T) {
	doc := mustDoc(t, `{"kpis":"summary","kpis_focus":[{"focus_area":"Accuracy","description":"Error rate"}]}`)
	h, row := kpiLayout().Flatten("Data Analyst", doc)

	want := Row{"summary", "Accuracy", "Error rate", "", "", "", "", ""}
	if strings.Join(row, "|") != strings.Join(want, "|") {
		t.Fatalf("row: want=%q got=%q", want, row)
	}
	if h[1] != "kpis_focus_1" || h[6] != "description_3" {
		t.Fatalf("header: got %q", h)
	}
	for i := 3; i <= 6; i++ {
		if row[i] == NA {
			t.Fatalf("row[%d]: padded slot must be empty, got N/A", i)
		}
	}
}

func TestFixedWidthPaddedSubFieldDefaults(t *testing.T) {
	doc := mustDoc(t, `{"kpis_focus":[{"description":"only a description"},{"focus_area":"Speed"}]}`)
	_, row := kpiLayout().Flatten("", doc)
	want := Row{NA, "KPI", "only a description", "Speed", NA, "", "", ""}
	if strings.Join(row, "|") != strings.Join(want, "|") {
		t.Fatalf("row: want=%q got=%q", want, row)
	}
}

func TestFixedLayoutWidthIsStable(t *testing.T) {
	l := kpiLayout()
	docs := []string{
		`{}`,
		`{"kpis_focus":"oops"}`,
		`{"kpis_focus":[{},{},{},{},{}]}`,
		`{"kpis":["a","b"],"kpis_focus":[{"focus_area":"x","description":"y"}]}`,
	}
	if !l.Fixed() {
		t.Fatalf("Fixed: want=true")
	}
	width := len(l.Header())
	if width != 8 {
		t.Fatalf("header width: want=8 got=%d", width)
	}
	for _, raw := range docs {
		h, row := l.Flatten("t", mustDoc(t, raw))
		if len(row) != width || len(h) != width {
			t.Fatalf("%s: want width=%d got row=%d header=%d", raw, width, len(row), len(h))
		}
	}
}

func TestSingleFieldsAndLists(t *testing.T) {
	l := Layout{Groups: []ColumnGroup{
		{Policy: Constant, Column: "job_title", FromTitle: true},
		{Policy: Constant, Column: "slug"},
		{Policy: SingleFieldWithDefault, Column: "reports_to", Path: "team_structure.reports_to", Default: NA},
		{Policy: SingleFieldWithDefault, Column: "leads", Path: "team_structure.leads", Default: NA},
		{Policy: SingleFieldWithDefault, Column: "edu_year", Path: "education.year", Default: NA},
		{Policy: JoinedText, Column: "skills_text", Path: "skills"},
		{Policy: BulletList, Column: "skills_html", Path: "skills"},
		{Policy: JoinedText, Column: "tools_text", Path: "tools"},
		{Policy: BulletList, Column: "tools_html", Path: "tools"},
	}}
	doc := mustDoc(t, `{
		"team_structure": {"reports_to": "Head of Data"},
		"education": {"year": 2019},
		"skills": ["SQL", "Python"]
	}`)
	_, row := l.Flatten("Data Analyst", doc)
	want := Row{
		"Data Analyst", "", "Head of Data", NA, "2019",
		"SQL\nPython", "<ul>\n  <li>SQL</li>\n  <li>Python</li>\n</ul>",
		NA, NA,
	}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("cell %d: want=%q got=%q", i, want[i], row[i])
		}
	}
}

func interviewLayout() Layout {
	sub := func(tier string) []SubField {
		return []SubField{
			{Name: "interview_question", Column: tier + "_%d_interview_question", Default: NA},
			{Name: "model_answer", Column: tier + "_%d_model_answer", Default: NA},
			{Name: "example", Column: tier + "_%d_example", Default: NA},
			{Name: "what_hiring_managers_should_pay_attention_to", Column: tier + "_%d_what_to_look_for", Bullets: true},
		}
	}
	return Layout{Groups: []ColumnGroup{
		{Policy: Constant, Column: "job_title", FromTitle: true},
		{Policy: VariableWidthUnpadded, Path: "job_title.entry_level.questions", SubFields: sub("entry_level")},
		{Policy: VariableWidthUnpadded, Path: "job_title.senior_level.questions", SubFields: sub("senior_level")},
	}}
}

func TestVariableWidthUnpadded(t *testing.T) {
	doc := mustDoc(t, `{"job_title": {
		"entry_level": {"questions": [
			{"interview_question": "q1", "model_answer": "a1", "example": "e1", "what_hiring_managers_should_pay_attention_to": ["x"]},
			{"interview_question": "q2", "model_answer": "a2"}
		]},
		"senior_level": {"questions": [
			{"interview_question": "q3", "model_answer": "a3", "example": "e3", "what_hiring_managers_should_pay_attention_to": []}
		]}
	}}`)
	l := interviewLayout()
	if l.Fixed() {
		t.Fatalf("Fixed: want=false")
	}
	if got := len(l.Header()); got != 1 {
		t.Fatalf("declared header: want=1 got=%d", got)
	}
	h, row := l.Flatten("Data Analyst", doc)
	if len(row) != 1+3*4 || len(h) != len(row) {
		t.Fatalf("width: want=13 got row=%d header=%d", len(row), len(h))
	}
	if h[5] != "entry_level_2_interview_question" || row[5] != "q2" {
		t.Fatalf("second block: header=%q cell=%q", h[5], row[5])
	}
	if row[7] != NA || row[8] != NA {
		t.Fatalf("missing sub-fields: want N/A got %q %q", row[7], row[8])
	}
	if h[9] != "senior_level_1_interview_question" || row[12] != "<ul>\n</ul>" {
		t.Fatalf("senior block: header=%q cell=%q", h[9], row[12])
	}

	_, short := l.Flatten("Data Analyst", mustDoc(t, `{}`))
	if len(short) != 1 {
		t.Fatalf("no questions: want width=1 got=%d", len(short))
	}
}

func TestTreeProjection(t *testing.T) {
	doc := mustDoc(t, `{
		"introduction": {"overview": "o", "impact_on_success": "i"},
		"skill_progression": {
			"beginner": {"skills": ["s0", "s1"], "examples_with_action_steps": ["e0"]},
			"advanced": {"skills": ["a0"], "examples_with_action_steps": ["ae0"]}
		},
		"top_skills_2025": {"technical_skills": ["go", "sql"]},
		"top_influencers": [{"name": "Ada", "expertise": "math"}]
	}`)
	p := &Pairing{Section: "skill_progression", Prefix: "skills_progression", Names: "skills", With: "examples_with_action_steps"}
	flat := Tree(doc, p)

	want := map[string]string{
		"introduction_overview":                                    "o",
		"introduction_impact_on_success":                           "i",
		"skills_progression_beginner_0_name":                       "s0",
		"skills_progression_beginner_0_examples_with_action_steps": "e0",
		"skills_progression_beginner_1_name":                       "s1",
		"skills_progression_beginner_1_examples_with_action_steps": "",
		"skills_progression_advanced_0_name":                       "a0",
		"top_skills_2025_technical_skills_1":                       "sql",
		"top_influencers_0_expertise":                              "math",
	}
	for k, v := range want {
		got, ok := flat[k]
		if !ok || got != v {
			t.Fatalf("%s: want=%q got=%q (present=%v)", k, v, got, ok)
		}
	}
	for k := range flat {
		if strings.HasPrefix(k, "skill_progression") {
			t.Fatalf("section key leaked: %s", k)
		}
	}

	l := Layout{Groups: []ColumnGroup{
		{Policy: Constant, Column: "profession", FromTitle: true},
		{Policy: TreeProjection, Pairing: p, Columns: []string{
			"introduction_overview",
			"introduction_adaptation_importance",
			"skills_progression_beginner_0_name",
			"learning_resources_0_course_link",
		}},
	}}
	_, row := l.Flatten("Data Analyst", doc)
	wantRow := Row{"Data Analyst", "o", "", "s0", ""}
	if strings.Join(row, "|") != strings.Join(wantRow, "|") {
		t.Fatalf("row: want=%q got=%q", wantRow, row)
	}
}

func TestCheckAgainstSchema(t *testing.T) {
	root := schema.Object("",
		schema.Required("kpis", schema.String("")),
		schema.Required("kpis_focus", schema.ArrayOf(schema.Object("",
			schema.Required("focus_area", schema.String("")),
			schema.Required("description", schema.String("")),
		), "")),
	)
	if err := kpiLayout().Check(root); err != nil {
		t.Fatalf("Check: %v", err)
	}
	bad := Layout{Groups: []ColumnGroup{
		{Policy: BulletList, Column: "kpis_html", Path: "kpis"},
		{Policy: SingleFieldWithDefault, Column: "x", Path: "missing"},
	}}
	err := bad.Check(root)
	if err == nil {
		t.Fatalf("Check: want error")
	}
	if !strings.Contains(err.Error(), `"kpis" has shape scalar`) || !strings.Contains(err.Error(), `"missing" not declared`) {
		t.Fatalf("Check error: %v", err)
	}
}

func TestRowSet(t *testing.T) {
	h, row := kpiLayout().Flatten("", map[string]any{})
	if !row.Set(h, "link", "https://example") {
		t.Fatalf("Set(link): want=true")
	}
	if row[len(row)-1] != "https://example" {
		t.Fatalf("link cell: got %q", row[len(row)-1])
	}
	if row.Set(h, "nope", "x") {
		t.Fatalf("Set(nope): want=false")
	}
}
