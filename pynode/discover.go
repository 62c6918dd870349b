package pynode

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/option"
)

// nodeDefRoots are the workspace-relative directories scanned for
// implementation files, the same set fingerprint.NodeDefsFingerprint
// aggregates over.
var nodeDefRoots = []string{"plugins/nodes", "engine/nodes", "engine/graph"}

// Discover lists the node-definition directories beneath a workspace root
// and returns every .py file URL, using afs.Service for I/O rather than
// bare os calls.
func Discover(ctx context.Context, fs afs.Service, workspaceRoot string) ([]string, error) {
	var files []string
	for _, rel := range nodeDefRoots {
		root := strings.TrimRight(workspaceRoot, "/") + "/" + rel
		exists, err := fs.Exists(ctx, root)
		if err != nil {
			return nil, fmt.Errorf("failed to check node definitions dir %s: %w", root, err)
		}
		if !exists {
			continue
		}
		objects, err := fs.List(ctx, root, option.NewRecursive(true))
		if err != nil {
			return nil, fmt.Errorf("failed to list node definitions dir %s: %w", root, err)
		}
		for _, obj := range objects {
			if obj.IsDir() {
				continue
			}
			if !strings.HasSuffix(obj.Name(), ".py") {
				continue
			}
			files = append(files, obj.URL())
		}
	}
	return files, nil
}
