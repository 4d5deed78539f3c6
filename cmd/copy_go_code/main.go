// copy_go_code copies a Go template file (by default chelper.go) into the current package directory.
//
// CGO C types cannot cross package boundaries (see https://github.com/golang/go/issues/13467), so every package
// using cgo gets its own copy of the C helpers. It is meant to be called from `go:generate`:
//
//	//go:generate go run ../cmd/copy_go_code --original=chelper.go
//
// The template is kept out of the build with a `//go:build ignore` constraint, which is removed in the copies, and
// its package clause is replaced by the package of the current directory.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagOriginalGoFile = flag.String("original", "",
		"Original file name (or full path) to copy to the current directory. "+
			"If not an absolute path, the file is searched for in the current and then parent directories.")
	flagTargetGoFile = flag.String("target", "gen_{{original}}",
		"Target file name (not the path). It is written in the current directory. "+
			"The string `{{original}}` is replaced with the base name of --original.")
	flagPackageName = flag.String("package", "", "Package name to use on copy. If empty uses current directory name.")
	flagPrefix      = flag.String("prefix", `/* DO NOT EDIT: this is a copy from {{original}} file */\n`,
		"Prefix text to include in copy. "+
			"The string `{{original}}` is replaced with the base name of --original. "+
			"The strings \\t and \\n are also replaced.")
)

var (
	rePackage     = regexp.MustCompile(`(?m)^package\s+\w+$`)
	reBuildIgnore = regexp.MustCompile(`(?m)^//go:build ignore\n+`)
)

// findOriginal searches name in dir and its parents, unless name is absolute.
func findOriginal(dir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Errorf("can't find original file %q in %q or any of its parent directories", name, dir)
		}
		dir = parent
	}
}

// transform returns the contents of the copy.
func transform(original []byte, prefix, packageName string) []byte {
	contents := reBuildIgnore.ReplaceAll(original, nil)
	contents = rePackage.ReplaceAll(contents, []byte("package "+packageName))
	return bytes.Join([][]byte{[]byte(prefix), contents}, []byte("\n"))
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *flagOriginalGoFile == "" {
		fmt.Printf("--original is required\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cwd := must.M1(os.Getwd())
	originalName := filepath.Base(*flagOriginalGoFile)
	targetName := strings.ReplaceAll(*flagTargetGoFile, "{{original}}", originalName)
	prefix := strings.ReplaceAll(*flagPrefix, "{{original}}", originalName)
	prefix = strings.ReplaceAll(prefix, `\t`, "\t")
	prefix = strings.ReplaceAll(prefix, `\n`, "\n")
	packageName := *flagPackageName
	if packageName == "" {
		packageName = filepath.Base(cwd)
	}

	originalPath, err := findOriginal(cwd, *flagOriginalGoFile)
	if err != nil {
		klog.Fatalf("%+v", err)
	}
	original := must.M1(os.ReadFile(originalPath))
	must.M(os.WriteFile(targetName, transform(original, prefix, packageName), 0644))
	klog.V(1).Infof("Generated %q from %q, with package name %q", targetName, originalPath, packageName)
	fmt.Printf("Generated %q from %q, with package name %q\n", targetName, originalPath, packageName)
}
