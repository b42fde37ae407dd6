// Command sqllint verifies that every inline SQL string opens with a
// unique `--sql <uuid>` marker line. The runner refuses unmarked
// statements at runtime; this catches them at review time instead, and
// also walks composite literals so the schema DDL slice is covered.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlKeywordPattern = regexp.MustCompile(`(?i)\b(select|insert|update|delete|create table|create index|with)\b`)
	markerPattern     = regexp.MustCompile(`^--sql ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)
)

type violation struct {
	file    string
	line    int
	message string
}

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"./internal/sqlinline"}
	}

	var violations []violation
	seen := map[string]string{}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
		if !info.IsDir() {
			if filepath.Ext(target) == ".go" {
				vs, err := lintFile(target, seen)
				if err != nil {
					fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
					os.Exit(1)
				}
				violations = append(violations, vs...)
			}
			continue
		}
		walkErr := filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") || d.Name() == "vendor" {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			vs, err := lintFile(path, seen)
			if err != nil {
				return err
			}
			violations = append(violations, vs...)
			return nil
		})
		if walkErr != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", walkErr)
			os.Exit(1)
		}
	}

	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "sqllint: SQL marker problems")
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "  %s:%d %s\n", v.file, v.line, v.message)
		}
		os.Exit(1)
	}
}

// lintFile checks every SQL-looking string literal in the file, whether it
// sits directly on a const/var or inside a slice literal.
func lintFile(path string, seen map[string]string) ([]violation, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var violations []violation
	ast.Inspect(file, func(n ast.Node) bool {
		bl, ok := n.(*ast.BasicLit)
		if !ok || bl.Kind != token.STRING {
			return true
		}
		raw, err := unquote(bl.Value)
		if err != nil || !sqlKeywordPattern.MatchString(raw) {
			return true
		}
		// Skip fragments like column lists that have no verbs at line one
		// but get concatenated into marked statements.
		if !strings.Contains(raw, "\n") {
			return true
		}

		pos := fset.Position(bl.Pos())
		m := markerPattern.FindStringSubmatch(firstLine(raw))
		if m == nil {
			violations = append(violations, violation{
				file:    path,
				line:    pos.Line,
				message: "missing or invalid --sql <uuid> marker",
			})
			return true
		}
		uuid := m[1]
		if prev, dup := seen[uuid]; dup {
			violations = append(violations, violation{
				file:    path,
				line:    pos.Line,
				message: fmt.Sprintf("marker %s already used at %s", uuid, prev),
			})
			return true
		}
		seen[uuid] = fmt.Sprintf("%s:%d", path, pos.Line)
		return true
	})
	return violations, nil
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if len(v) == 0 {
		return v, nil
	}
	if v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}
