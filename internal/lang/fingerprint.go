package lang

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Fingerprint tags distinguish a real AST-derived hash from the raw-text
// fallback used when parsing fails. The two spaces never compare equal, even
// if the hex payloads coincide.
const (
	astTag    = "ast:"
	sourceTag = "source:"
)

// Fingerprint computes a structural hash of a parsed file: a depth-first,
// order-preserving walk that skips comments, keeps identifier text verbatim,
// digests string-literal content, and reduces every other named node to its
// syntactic type tag. The result is insensitive to comments and whitespace
// but sensitive to identifiers, literals, and structure.
//
// The source text is threaded through the traversal explicitly; nothing is
// stashed on shared state, so Fingerprint is safe to call concurrently.
func Fingerprint(tree *sitter.Tree, src []byte) string {
	sum := sha256.Sum256([]byte(structure(tree.RootNode(), src)))
	return astTag + hex.EncodeToString(sum[:])[:16]
}

// FallbackFingerprint digests the raw source text. Used when parsing fails.
func FallbackFingerprint(src []byte) string {
	sum := sha256.Sum256(src)
	return sourceTag + hex.EncodeToString(sum[:])[:16]
}

// IsASTFingerprint reports whether the fingerprint was derived from a parsed
// tree rather than the raw-text fallback.
func IsASTFingerprint(fp string) bool {
	return strings.HasPrefix(fp, astTag)
}

// structure renders a node as a parenthesized, order-preserving string.
// Comment nodes render as the empty string and are dropped by their parent.
func structure(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	typ := n.Type()
	if strings.Contains(strings.ToLower(typ), "comment") {
		return ""
	}

	parts := []string{typ}
	switch {
	case strings.HasSuffix(typ, "identifier"):
		parts = append(parts, "'"+nodeText(n, src)+"'")
	case strings.Contains(typ, "string"):
		sum := sha256.Sum256([]byte(nodeText(n, src)))
		parts = append(parts, "str:"+hex.EncodeToString(sum[:])[:8])
	default:
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if s := structure(n.NamedChild(i), src); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}
