package titles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"data analyst":     "Data Analyst",
		"  SEO   MANAGER ": "Seo Manager",
		"":                 "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestRead(t *testing.T) {
	in := "\ufeffid,clean_job_titles\n1,data analyst\n2,\n3,nurse practitioner\n4\n"
	got, err := Read(strings.NewReader(in), "")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []string{"Data Analyst", "Nurse Practitioner"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("titles: want=%q got=%q", want, got)
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := Read(strings.NewReader(""), "job_titles"); err == nil {
		t.Fatalf("Read(empty): want error")
	}
	if _, err := Read(strings.NewReader("a,b\n1,2\n"), "job_titles"); err == nil || !strings.Contains(err.Error(), "job_titles") {
		t.Fatalf("Read(missing column): got %v", err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titles.csv")
	if err := os.WriteFile(path, []byte("job_titles\nux designer\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path, "job_titles")
	if err != nil || len(got) != 1 || got[0] != "Ux Designer" {
		t.Fatalf("ReadFile: got %q err=%v", got, err)
	}
}

func TestWindow(t *testing.T) {
	all := []string{"a", "b", "c", "d"}
	cases := []struct {
		offset, limit int
		want          string
	}{
		{0, 0, "a,b,c,d"},
		{1, 2, "b,c"},
		{3, 10, "d"},
		{4, 0, ""},
		{-1, 1, "a"},
	}
	for _, tc := range cases {
		if got := strings.Join(Window(all, tc.offset, tc.limit), ","); got != tc.want {
			t.Fatalf("Window(%d,%d): want=%q got=%q", tc.offset, tc.limit, tc.want, got)
		}
	}
}
