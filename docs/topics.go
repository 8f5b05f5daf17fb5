// Package docs embeds the user documentation, one markdown file per topic.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// All is the pseudo topic that expands to every topic.
const All = "*"

// Topic returns the content of a documentation topic.
func Topic(name string) (string, error) {
	content, err := docs.ReadFile(strings.ToLower(name) + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found, try one of %s: %w", name, strings.Join(Names(), ", "), err)
	}
	return string(content), nil
}

// Topics returns the content of several topics, separated by a blank line.
// All expands to every topic but the readme.
func Topics(names ...string) (string, error) {
	var expanded []string
	for _, name := range names {
		if name == All {
			expanded = append(expanded, Names()...)
			continue
		}
		expanded = append(expanded, name)
	}

	var b strings.Builder
	for _, name := range expanded {
		content, err := Topic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Names returns the available topics, sorted, without the readme.
func Names() []string {
	entries, err := fs.Glob(docs, "*.md")
	if err != nil {
		// only on a malformed pattern.
		panic(err)
	}
	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e, ".md")
		if name != "readme" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
