package architecture_test

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
)

const modulePath = "tablekit"

type layerRule struct {
	sourcePrefix string
	forbidden    []string
	hint         string
}

var architectureRules = []layerRule{
	{
		sourcePrefix: modulePath + "/internal/domain",
		forbidden: []string{
			modulePath + "/internal/table",
			modulePath + "/internal/source",
			modulePath + "/internal/service",
			modulePath + "/internal/api",
			modulePath + "/internal/db",
			modulePath + "/internal/middleware",
			modulePath + "/internal/app",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "domain may only import domain",
	},
	{
		sourcePrefix: modulePath + "/internal/table",
		forbidden: []string{
			modulePath + "/internal/source",
			modulePath + "/internal/service",
			modulePath + "/internal/api",
			modulePath + "/internal/db",
			modulePath + "/internal/middleware",
			modulePath + "/internal/app",
			modulePath + "/internal/tabledef",
			modulePath + "/internal/tables",
		},
		hint: "table depends on domain only; sources plug in through table.DataSource",
	},
	{
		sourcePrefix: modulePath + "/internal/source",
		forbidden: []string{
			modulePath + "/internal/service",
			modulePath + "/internal/api",
			modulePath + "/internal/db",
			modulePath + "/internal/middleware",
			modulePath + "/internal/app",
			modulePath + "/internal/tabledef",
			modulePath + "/internal/tables",
		},
		hint: "sources depend on table and domain",
	},
	{
		sourcePrefix: modulePath + "/internal/service",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/db",
			modulePath + "/internal/source",
			modulePath + "/internal/middleware",
			modulePath + "/internal/app",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "service should depend on table, domain and service-local packages",
	},
	{
		sourcePrefix: modulePath + "/internal/api",
		forbidden: []string{
			modulePath + "/internal/db",
			modulePath + "/internal/source",
			modulePath + "/internal/app",
			modulePath + "/internal/tabledef",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "api should depend on table/domain/api packages",
	},
	{
		sourcePrefix: modulePath + "/internal/db",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/service",
			modulePath + "/internal/middleware",
			modulePath + "/internal/app",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "db should depend on db-local packages and the SQL dialects",
	},
	{
		sourcePrefix: modulePath + "/internal/middleware",
		forbidden: []string{
			modulePath + "/internal/table",
			modulePath + "/internal/source",
			modulePath + "/internal/service",
			modulePath + "/internal/db",
			modulePath + "/internal/api",
		},
		hint: "middleware should depend on middleware-local packages",
	},
}

func collectGoFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".go") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func repoRootDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func internalRootDir() string {
	return filepath.Join(repoRootDir(), "internal")
}

func findRule(sourcePkg string) (layerRule, bool) {
	for _, rule := range architectureRules {
		if hasPathPrefix(sourcePkg, rule.sourcePrefix) {
			return rule, true
		}
	}
	return layerRule{}, false
}

func violatesRule(importPath string, forbidden []string) bool {
	for _, prefix := range forbidden {
		if hasPathPrefix(importPath, prefix) {
			return true
		}
	}
	return false
}

func hasPathPrefix(value string, prefix string) bool {
	return value == prefix || strings.HasPrefix(value, prefix+"/")
}

// packageImportPath maps a file under internal/ to its package import path.
func packageImportPath(file string) string {
	dir := filepath.ToSlash(filepath.Dir(file))
	idx := strings.Index(dir, "/internal/")
	if idx < 0 {
		return modulePath + "/" + dir
	}
	return modulePath + dir[idx:]
}

func isTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_test.go")
}

func relToRepoRoot(path string) string {
	rel, err := filepath.Rel(repoRootDir(), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
