// Package fingerprint computes the content hashes the persistent cache and
// the in-memory layout cache invalidate on.
//
// Two hash families coexist deliberately. FileMD5/NodeDefsFingerprint/
// GraphSignature must be byte-for-byte reproducible by any other
// implementation speaking the same cache format, so they use the standard
// library's crypto/md5 and crypto/sha1 rather than a faster keyed hash --
// this is a wire-compatibility requirement, not a default to stdlib.
// FastHash stays on highwayhash for purely-internal pre-checks that never
// leave the process.
package fingerprint

import (
	"crypto/md5"
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/minio/highwayhash"
)

// FileMD5 returns the hex-encoded MD5 digest of a file's contents.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// nodeDefDirs are the directories a workspace root is scanned under when
// computing the node-definition library fingerprint.
var nodeDefDirs = []string{
	"plugins/nodes",
	"engine/nodes",
	"engine/graph",
}

// NodeDefsFingerprint aggregates (file count, latest modification time) over
// every .py file beneath the nodeDefDirs directories of a workspace;
// composite-library directories are not scanned. Touching any .py file
// under those directories changes this value and invalidates every
// dependent cache transitively.
func NodeDefsFingerprint(workspaceRoot string) (string, error) {
	var count int
	var latest int64

	for _, rel := range nodeDefDirs {
		root := filepath.Join(workspaceRoot, rel)
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("failed to stat node definitions dir %s: %w", root, err)
		}
		if !info.IsDir() {
			continue
		}
		err = filepath.Walk(root, func(path string, fi os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if fi.IsDir() || filepath.Ext(path) != ".py" {
				return nil
			}
			count++
			if mt := fi.ModTime().UnixNano(); mt > latest {
				latest = mt
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to walk node definitions dir %s: %w", root, err)
		}
	}

	return fmt.Sprintf("%d:%d", count, latest), nil
}

// SignatureSource is the minimal view of a graph a GraphSignature is
// computed over: sorted node ids and sorted edges with their endpoints.
type SignatureSource interface {
	NodeIDs() []string
	EdgeIDs() []string
	Edge(id string) (srcNode, srcPort, dstNode, dstPort string, ok bool)
	Revision() int
	Version() int
}

// Signature is the deterministic (revision, version, nodes_sha1, edges_sha1)
// tuple a LayoutContext is cached against.
type Signature struct {
	Revision int
	Version  int
	NodesSHA1 string
	EdgesSHA1 string
}

// GraphSignature computes the signature deterministically: node ids in
// sorted order, each followed by a NUL separator; edges in sorted id order,
// with "id|src->dst:srcPort/dstPort" followed by a NUL separator. This
// exact byte layout is a cross-implementation compatibility requirement.
func GraphSignature(src SignatureSource) Signature {
	nodeHasher := sha1.New()
	nodeIDs := append([]string(nil), src.NodeIDs()...)
	sort.Strings(nodeIDs)
	for _, id := range nodeIDs {
		nodeHasher.Write([]byte(id))
		nodeHasher.Write([]byte{0})
	}

	edgeHasher := sha1.New()
	edgeIDs := append([]string(nil), src.EdgeIDs()...)
	sort.Strings(edgeIDs)
	for _, id := range edgeIDs {
		edgeHasher.Write([]byte(id))
		edgeHasher.Write([]byte("|"))
		if srcNode, srcPort, dstNode, dstPort, ok := src.Edge(id); ok {
			edgeHasher.Write([]byte(srcNode))
			edgeHasher.Write([]byte("->"))
			edgeHasher.Write([]byte(dstNode))
			edgeHasher.Write([]byte(":"))
			edgeHasher.Write([]byte(srcPort))
			edgeHasher.Write([]byte("/"))
			edgeHasher.Write([]byte(dstPort))
		}
		edgeHasher.Write([]byte{0})
	}

	return Signature{
		Revision:  src.Revision(),
		Version:   src.Version(),
		NodesSHA1: fmt.Sprintf("%x", nodeHasher.Sum(nil)),
		EdgesSHA1: fmt.Sprintf("%x", edgeHasher.Sum(nil)),
	}
}

// String renders the signature as a cache/log-friendly key.
func (s Signature) String() string {
	return strconv.Itoa(s.Revision) + ":" + strconv.Itoa(s.Version) + ":" + s.NodesSHA1 + ":" + s.EdgesSHA1
}

// CopyEdgeID derives the deterministic id the global copy manager assigns
// to a newly synthesized edge: "edge_copy_" followed by a SHA-1 prefix of
// the edge's logical key. Collisions are resolved by the caller re-deriving
// from the same key with a numeric suffix (see layout.CopyManager).
func CopyEdgeID(srcNode, srcPort, dstNode, dstPort string, attempt int) string {
	key := strings.Join([]string{srcNode, srcPort, dstNode, dstPort, strconv.Itoa(attempt)}, "|")
	sum := sha1.Sum([]byte(key))
	return fmt.Sprintf("edge_copy_%x", sum[:8])
}

// ContentHash hashes a canonical, position-free serialization of a graph so
// that moving nodes around never changes the hash.
func ContentHash(canonical []byte) string {
	sum := sha1.Sum(canonical)
	return fmt.Sprintf("%x", sum)
}

var fastHashKey = []byte("GRAPHFORGE-FASTHASH-KEY-00000000")

// FastHash is a quick, non-wire-format digest used as a pre-check before the
// slower SHA-1 GraphSignature is computed.
func FastHash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(fastHashKey)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize fast hash: %w", err)
	}
	if _, err := h.Write(data); err != nil {
		return 0, fmt.Errorf("failed to compute fast hash: %w", err)
	}
	return h.Sum64(), nil
}
