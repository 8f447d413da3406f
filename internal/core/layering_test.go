package core

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const modulePath = "github.com/gkats/catalog-api"

// The core packages may depend on each other and on shared internal
// packages, never on the adapters that wrap them.
var forbiddenCoreImports = []string{
	modulePath + "/internal/api",
	modulePath + "/internal/infrastructure",
	modulePath + "/cmd",
}

func TestCoreDoesNotImportAdapters(t *testing.T) {
	fset := token.NewFileSet()
	checked := 0

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		checked++
		for _, imp := range f.Imports {
			p, _ := strconv.Unquote(imp.Path.Value)
			for _, forbidden := range forbiddenCoreImports {
				if p == forbidden || strings.HasPrefix(p, forbidden+"/") {
					t.Errorf("%s imports %s", path, p)
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk core: %v", err)
	}
	if checked == 0 {
		t.Fatalf("no core sources found")
	}
}
