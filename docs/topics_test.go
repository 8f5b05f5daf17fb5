package docs

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/stockchat/backendtest"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	bashSetup    = "bash setup"
	bashRun      = "bash run"
	consoleCheck = "console check"
	bashCheck    = "bash check"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every topic is
	// listed in readme.md.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		t.Run("load_"+topic, func(t *testing.T) {
			if _, err := Topic(topic); err != nil {
				t.Errorf("failed to get topic %q: %v", topic, err)
			}
		})
	}
	for _, name := range Names() {
		if !slices.Contains(listed, name) {
			t.Errorf("topic %q is not listed in readme.md", name)
		}
	}
}

func TestTopicsAll(t *testing.T) {
	all, err := Topics(All)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range Names() {
		content, _ := Topic(name)
		if !strings.Contains(all, content) {
			t.Errorf("Topics(All) misses %q", name)
		}
	}
	readme, _ := Topic("readme")
	if strings.Contains(all, readme) {
		t.Error("Topics(All) contains the readme")
	}
	if _, err := Topics("chat", "nope"); err == nil {
		t.Error("Topics() with an unknown topic succeeded")
	}
}

func TestHeadings(t *testing.T) {
	// Every topic starts with a single level one heading.
	for _, name := range append(Names(), "readme") {
		t.Run(name, func(t *testing.T) {
			content, err := Topic(name)
			if err != nil {
				t.Fatal(err)
			}
			source := []byte(content)
			root := goldmark.DefaultParser().Parse(text.NewReader(source))
			var h1 int
			ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				if h, ok := n.(*ast.Heading); ok && entering && h.Level == 1 {
					h1++
				}
				return ast.WalkContinue, nil
			})
			first, ok := root.FirstChild().(*ast.Heading)
			if !ok || first.Level != 1 {
				t.Errorf("%s.md does not start with a level one heading", name)
			}
			if h1 != 1 {
				t.Errorf("%s.md has %d level one headings, want 1", name, h1)
			}
		})
	}
}

func TestCodeBlocks(t *testing.T) {
	if testing.Short() {
		t.Skip("builds schat")
	}
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat("../README.md"); err == nil {
		files = append(files, "../README.md")
	}

	schat := buildSchat(t, t.TempDir())
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			runBlocks(t, schat, file)
		})
	}
}

// HELPER

// Block represents a fenced code block in the markdown file.
type Block struct {
	Type    string
	Content string
	File    string
	Line    int
}

// buildSchat builds the schat executable in tmp and returns its path.
func buildSchat(t *testing.T, tmp string) string {
	t.Helper()
	output := filepath.Join(tmp, "schat")
	buildCmd := exec.Command("go", "build", "-o", output, "../schat/")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build schat: %v\n%s", err, out)
	}
	return output
}

// parseMarkdown parses a markdown file and returns its executable Blocks.
func parseMarkdown(t *testing.T, file string) []*Block {
	t.Helper()

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var blocks []*Block
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		lang := string(fcb.Info.Segment.Value(content))
		switch lang {
		case bashCheck, bashSetup, bashRun, consoleCheck:
		default:
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, &Block{
			Type:    lang,
			Content: b.String(),
			File:    file,
			Line:    lineNumber(content, fcb.Info.Segment.Start),
		})
		return ast.WalkContinue, nil
	})
	return blocks
}

// lineNumber computes the line number of an offset in source.
func lineNumber(source []byte, offset int) int {
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}

// blockRunner runs the blocks of a file in order.
type blockRunner struct {
	env            []string
	previousOutput string
	tmpFolder      string
}

func (r *blockRunner) runBlock(t *testing.T, block *Block) {
	t.Helper()

	if block.Type == consoleCheck {
		want := strings.TrimSpace(block.Content)
		got := strings.TrimSpace(r.previousOutput)
		if want != got {
			t.Errorf("%s:%d: output mismatch:\ngot:\n\n%s\n\nwant:\n\n%s\n\ngot :%q\nwant:%q\n", block.File, block.Line, got, want, got, want)
		}
		return
	}
	// a setup starts a new scenario.
	if block.Type == bashSetup {
		r.tmpFolder = t.TempDir()
	}

	cmd := exec.Command("bash", "-c", "set -e; "+block.Content)
	cmd.Dir = r.tmpFolder
	cmd.Env = r.env
	output, err := cmd.CombinedOutput()
	if block.Type == bashRun {
		r.previousOutput = string(output)
	}
	if err != nil {
		switch block.Type {
		case bashSetup, bashRun:
			t.Fatalf("%s:%d: %s failed: %v with output:\n%s\n", block.File, block.Line, block.Type, err, output)
		case bashCheck:
			t.Errorf("%s:%d: %s failed: %v with output:\n%s\n", block.File, block.Line, block.Type, err, output)
		}
	}
}

// runBlocks executes the scenarios of a markdown file against a fresh fake
// backend.
func runBlocks(t *testing.T, schat, file string) {
	t.Helper()
	blocks := parseMarkdown(t, file)
	if len(blocks) == 0 {
		return
	}
	srv := backendtest.New(t)

	path := fmt.Sprintf("PATH=%s%c%s", filepath.Dir(schat), os.PathListSeparator, os.Getenv("PATH"))
	env := append(os.Environ(), path, "STOCKCHAT_SERVER_URL="+srv.URL, "STOCKCHAT_STYLE=notty")

	r := blockRunner{env: env, tmpFolder: t.TempDir()}
	for _, block := range blocks {
		r.runBlock(t, block)
	}
}
