// Package docs embeds the documentation of the stk tool, one markdown file
// per topic.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed *.md
var files embed.FS

// Index is the topic listing all the others.
const Index = "readme"

// Topics returns the names of the topics other than the index, sorted.
func Topics() []string {
	names, _ := fs.Glob(files, "*.md") // sorted, and the pattern is valid
	topics := names[:0]
	for _, n := range names {
		if n = strings.TrimSuffix(n, ".md"); n != Index {
			topics = append(topics, n)
		}
	}
	return topics
}

// Read returns the named topics one after the other. "*" names all the
// topics but the index.
func Read(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		if name == "*" {
			all, err := Read(Topics()...)
			if err != nil {
				return "", err
			}
			b.WriteString(all)
			continue
		}
		content, err := fs.ReadFile(files, name+".md")
		if err != nil {
			return "", fmt.Errorf("no topic %q, see stk topic", name)
		}
		b.Write(content)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
