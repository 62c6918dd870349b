// Package repo locates the workspace root a graph/node-definition file lives
// in, adapted from inspector/repository/detector.go's project-root search:
// walk upward from a path looking for marker files, narrowed to the two
// workspace shapes this domain actually sees -- a Python authoring
// workspace, and a mixed workspace where the engine core itself is vendored
// as a Go module alongside the Python node library.
package repo

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// Kind identifies the shape of workspace a Detector found.
type Kind string

const (
	KindPython  Kind = "python"
	KindGoMixed Kind = "go_mixed"
	KindGit     Kind = "git"
	KindUnknown Kind = "unknown"
)

// Workspace is the detected workspace a node-definition or graph file
// belongs to.
type Workspace struct {
	RootPath     string
	Kind         Kind
	Name         string
	RelativePath string
	// GoModule is set only for KindGoMixed, when the workspace also carries
	// a go.mod (e.g. the engine core vendored alongside the node library).
	GoModule *modfile.Module
}

// Detector searches upward from a path for workspace marker files.
type Detector struct {
	markers []string
}

// New returns a Detector recognizing the markers this domain's workspaces
// use.
func New() *Detector {
	return &Detector{
		markers: []string{
			"pyproject.toml",
			"requirements.txt",
			"go.mod",
			".git",
		},
	}
}

// Detect identifies the workspace root containing path.
func (d *Detector) Detect(ctx context.Context, path string) (*Workspace, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	startDir := absPath
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	rootPath, marker := d.findRoot(startDir)
	ws := &Workspace{RootPath: absPath, Kind: KindUnknown}
	if rootPath != "" {
		ws.RootPath = rootPath
		ws.Kind = kindForMarker(marker)
	}

	relPath, err := filepath.Rel(ws.RootPath, absPath)
	if err != nil {
		relPath = filepath.Base(absPath)
	}
	ws.RelativePath = filepath.ToSlash(relPath)

	switch ws.Kind {
	case KindGoMixed:
		ws.GoModule = d.readGoModule(ctx, filepath.Join(ws.RootPath, "go.mod"))
		ws.Name = moduleNameOrDir(ws.GoModule, ws.RootPath)
	case KindPython:
		ws.Name = d.pythonProjectName(ws.RootPath)
	default:
		ws.Name = filepath.Base(ws.RootPath)
	}

	return ws, nil
}

func (d *Detector) findRoot(startDir string) (string, string) {
	dir := startDir
	for {
		for _, marker := range d.markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, marker
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ""
}

func kindForMarker(marker string) Kind {
	switch marker {
	case "go.mod":
		return KindGoMixed
	case "pyproject.toml", "requirements.txt":
		return KindPython
	case ".git":
		return KindGit
	default:
		return KindUnknown
	}
}

// readGoModule parses go.mod through afs.Service, matching
// inspector/repository/detector.go's extractGoModuleName pattern of
// preferring afs and falling back to a plain read.
func (d *Detector) readGoModule(ctx context.Context, goModPath string) *modfile.Module {
	fs := afs.New()
	if content, _ := fs.DownloadWithURL(ctx, goModPath); len(content) > 0 {
		if mod, _ := modfile.Parse(goModPath, content, nil); mod != nil {
			return mod.Module
		}
	}
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return nil
	}
	mod, err := modfile.Parse(goModPath, data, nil)
	if err != nil {
		return nil
	}
	return mod.Module
}

func moduleNameOrDir(mod *modfile.Module, root string) string {
	if mod != nil {
		return mod.Mod.Path
	}
	return filepath.Base(root)
}

// pythonProjectName extracts a project name from pyproject.toml's
// [tool.poetry]/[project] name field, falling back to the directory name.
func (d *Detector) pythonProjectName(rootPath string) string {
	data, err := os.ReadFile(filepath.Join(rootPath, "pyproject.toml"))
	if err != nil {
		return filepath.Base(rootPath)
	}
	nameRegex := regexp.MustCompile(`(?ms)(?:^\[(?:tool\.poetry|project)\][^\[]*?^\s*name|(?:tool\.poetry|project)\.name)\s*=\s*["']([^"']+)["']`)
	matches := nameRegex.FindSubmatch(data)
	if len(matches) < 2 {
		return filepath.Base(rootPath)
	}
	return string(matches[1])
}

// GitOrigin reads the origin remote URL from a workspace's .git/config, if
// present, useful when the workspace detector is also asked to identify a
// repository.
func GitOrigin(gitRoot string) string {
	configPath := filepath.Join(gitRoot, ".git", "config")
	file, err := os.Open(configPath)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	foundRemote := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, `[remote "origin"]`) {
			foundRemote = true
			continue
		}
		if foundRemote && strings.HasPrefix(line, "url = ") {
			return strings.TrimPrefix(line, "url = ")
		}
	}
	return ""
}
