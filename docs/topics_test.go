package docs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// listed matches the topic lines of readme.md: "* formats: ...".
var listed = regexp.MustCompile(`(?m)^\*\s+([\w-]+):`)

func TestTopics(t *testing.T) {
	readme, err := os.ReadFile(Index + ".md")
	if err != nil {
		t.Fatal(err)
	}
	var inReadme []string
	for _, m := range listed.FindAllStringSubmatch(string(readme), -1) {
		inReadme = append(inReadme, m[1])
	}
	slices.Sort(inReadme)

	if got := Topics(); !slices.Equal(got, inReadme) {
		t.Errorf("Topics() = %v, readme.md lists %v", got, inReadme)
	}
	for _, topic := range inReadme {
		if _, err := Read(topic); err != nil {
			t.Errorf("Read(%q): %v", topic, err)
		}
	}
}

func TestRead(t *testing.T) {
	all, err := Read("*")
	if err != nil {
		t.Fatal(err)
	}
	for _, title := range []string{"# File formats", "# Commands", "# Several machines"} {
		if !strings.Contains(all, title) {
			t.Errorf("Read(*) lacks %q", title)
		}
	}
	if strings.Contains(all, "# stk documentation") {
		t.Errorf("Read(*) includes the index")
	}
	if _, err := Read("formats", "nope"); err == nil {
		t.Errorf("Read(nope) succeeded")
	}
}

// Documentation examples are executable. A markdown file holds scenarios
// made of fenced blocks tagged with:
//
//   - "bash setup": starts a scenario in a fresh folder and runs the block.
//   - "bash run": runs the block and keeps its output.
//   - "console check": compares the kept output with the block.
//   - "bash check": runs the block, which must succeed.
//
// Blocks run with stk in the PATH, and the scenario folder as the stockroom
// root.
func TestExamples(t *testing.T) {
	files, _ := filepath.Glob("*.md")
	files = append(files, "../README.md")

	bin := t.TempDir()
	build := exec.Command("go", "build", "-o", filepath.Join(bin, "stk"), "../stk/")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("go build stk: %v\n%s", err, out)
	}
	env := append(os.Environ(),
		"PATH="+bin+string(os.PathListSeparator)+os.Getenv("PATH"),
		"STK_ROOT=.", "STK_ORIGIN=docs", "STK_LOG_LEVEL=error")

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			s := scenario{env: env, dir: t.TempDir()}
			for _, b := range examples(t, file) {
				s.play(t, b)
			}
		})
	}
}

// example is a tagged fenced block.
type example struct {
	tag  string
	code string
	pos  string // file:line
}

func examples(t *testing.T, file string) []example {
	t.Helper()
	src, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	var list []example
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		tag := string(fcb.Info.Segment.Value(src))
		switch tag {
		case "bash setup", "bash run", "bash check", "console check":
		default:
			return ast.WalkContinue, nil
		}
		var code bytes.Buffer
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(src))
		}
		// goldmark does not track lines, count them up to the info string.
		line := bytes.Count(src[:fcb.Info.Segment.Start], []byte("\n")) + 1
		list = append(list, example{tag, code.String(), fmt.Sprintf("%s:%d", file, line)})
		return ast.WalkContinue, nil
	})
	return list
}

// scenario is the state carried from one example to the next.
type scenario struct {
	env    []string
	dir    string
	output string
}

func (s *scenario) play(t *testing.T, b example) {
	t.Helper()
	if b.tag == "console check" {
		got := strings.ReplaceAll(strings.TrimSpace(s.output), "\t", "        ")
		if want := strings.TrimSpace(b.code); got != want {
			t.Errorf("%s: got\n%s\nwant\n%s", b.pos, got, want)
		}
		return
	}
	if b.tag == "bash setup" {
		s.dir = t.TempDir()
	}
	sh := exec.Command("bash", "-c", "set -e\n"+b.code)
	sh.Dir, sh.Env = s.dir, s.env
	out, err := sh.CombinedOutput()
	if b.tag == "bash run" {
		s.output = string(out)
	}
	switch {
	case err == nil:
	case b.tag == "bash check":
		t.Errorf("%s: check failed: %v\n%s", b.pos, err, out)
	default:
		t.Fatalf("%s: %s failed: %v\n%s", b.pos, b.tag, err, out)
	}
}
