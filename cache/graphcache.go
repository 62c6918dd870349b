// Package cache implements the persistent graph cache: JSON entries keyed
// by file-hash and node-definitions fingerprint, written atomically, and
// structurally self-checked on load.
//
// I/O goes through afs.Service rather than bare os calls.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/viant/afs"
)

// Entry is the persisted cache payload for one graph.
type Entry struct {
	FileHash   string         `json:"file_hash"`
	NodeDefsFP string         `json:"node_defs_fp"`
	ResultData map[string]any `json:"result_data"`
	CachedAt   string         `json:"cached_at"`
}

// GraphCache is a directory of per-graph JSON cache files, one per graph id
// under <workspaceRoot>/app/runtime/cache/graph_cache/.
type GraphCache struct {
	fs  afs.Service
	dir string
}

// New returns a GraphCache rooted at <workspaceRoot>/app/runtime/cache/graph_cache.
func New(workspaceRoot string) *GraphCache {
	return &GraphCache{
		fs:  afs.New(),
		dir: strings.TrimRight(workspaceRoot, "/") + "/app/runtime/cache/graph_cache",
	}
}

func (c *GraphCache) pathFor(graphID string) string {
	return c.dir + "/" + graphID + ".json"
}

// Load returns the cached serialization for graphID if, and only if, the
// stored file-hash and node-defs fingerprint both match the provided values
// and the stored result passes the structural self-check; every other case
// is a miss. An empty, unreadable, malformed or structurally inconsistent
// file is deleted; a file whose file-hash or fingerprint merely differs is
// left in place for the next Save to overwrite.
func (c *GraphCache) Load(ctx context.Context, graphID, fileHash, nodeDefsFP string) (map[string]any, bool) {
	path := c.pathFor(graphID)
	exists, err := c.fs.Exists(ctx, path)
	if err != nil || !exists {
		return nil, false
	}

	data, err := c.fs.DownloadWithURL(ctx, path)
	if err != nil || len(data) == 0 {
		c.deleteQuiet(ctx, path)
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.deleteQuiet(ctx, path)
		return nil, false
	}

	if entry.FileHash != fileHash || entry.NodeDefsFP != nodeDefsFP {
		return nil, false
	}

	if !isResultDataStructurallyConsistent(entry.ResultData) {
		c.deleteQuiet(ctx, path)
		return nil, false
	}

	return entry.ResultData, true
}

// Save atomically writes a graph's serialization to the cache: the payload
// is written to "<id>.json.tmp" first, then the file is renamed into place,
// so a reader never observes a partially-written file.
func (c *GraphCache) Save(ctx context.Context, graphID, fileHash, nodeDefsFP string, result map[string]any, now time.Time) error {
	entry := Entry{
		FileHash:   fileHash,
		NodeDefsFP: nodeDefsFP,
		ResultData: result,
		CachedAt:   now.UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry for graph %s: %w", graphID, err)
	}

	finalPath := c.pathFor(graphID)
	tmpPath := finalPath + ".tmp"

	if err := c.fs.Upload(ctx, tmpPath, os.ModePerm, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write temp cache file %s: %w", tmpPath, err)
	}
	if err := c.fs.Move(ctx, tmpPath, finalPath); err != nil {
		return fmt.Errorf("failed to rename cache file %s -> %s: %w", tmpPath, finalPath, err)
	}
	return nil
}

// Clear removes a single graph's cache entry.
func (c *GraphCache) Clear(ctx context.Context, graphID string) error {
	return c.deleteQuiet(ctx, c.pathFor(graphID))
}

// ClearAll removes every entry under the cache directory.
func (c *GraphCache) ClearAll(ctx context.Context) error {
	exists, err := c.fs.Exists(ctx, c.dir)
	if err != nil {
		return fmt.Errorf("failed to stat cache directory %s: %w", c.dir, err)
	}
	if !exists {
		return nil
	}
	return c.fs.Delete(ctx, c.dir)
}

func (c *GraphCache) deleteQuiet(ctx context.Context, path string) error {
	exists, err := c.fs.Exists(ctx, path)
	if err != nil || !exists {
		return nil
	}
	return c.fs.Delete(ctx, path)
}

// flowPortPlaceholder is the sentinel src_port/dst_port value a flow edge's
// endpoint may carry in place of a real port name.
const flowPortPlaceholder = "__flow__"

// isResultDataStructurallyConsistent validates that every edge endpoint
// resolves to an existing node and -- except for the flow-port placeholder --
// to a valid port name on that node.
func isResultDataStructurallyConsistent(result map[string]any) bool {
	nodesByID := map[string]map[string]any{}
	nodes, _ := result["nodes"].([]any)
	for _, item := range nodes {
		nodeMap, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := nodeMap["id"].(string)
		if id == "" {
			return false
		}
		nodesByID[id] = nodeMap
	}

	edges, _ := result["edges"].([]any)
	for _, item := range edges {
		edgeMap, ok := item.(map[string]any)
		if !ok {
			return false
		}
		if !edgeEndpointValid(nodesByID, edgeMap, "src_node", "src_port", true) {
			return false
		}
		if !edgeEndpointValid(nodesByID, edgeMap, "dst_node", "dst_port", false) {
			return false
		}
	}
	return true
}

func edgeEndpointValid(nodesByID map[string]map[string]any, edgeMap map[string]any, nodeKey, portKey string, isOutput bool) bool {
	nodeID, _ := edgeMap[nodeKey].(string)
	node, ok := nodesByID[nodeID]
	if !ok {
		return false
	}
	port, _ := edgeMap[portKey].(string)
	if port == flowPortPlaceholder {
		return true
	}
	portsKey := "inputs"
	if isOutput {
		portsKey = "outputs"
	}
	ports, _ := node[portsKey].([]any)
	for _, p := range ports {
		if name, ok := p.(string); ok && name == port {
			return true
		}
	}
	return false
}
