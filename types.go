package drift

import (
	"github.com/nmoller/drift/internal/change"
	"github.com/nmoller/drift/internal/config"
	"github.com/nmoller/drift/internal/graph"
	"github.com/nmoller/drift/internal/lang"
	"github.com/nmoller/drift/internal/store"
)

// Public type aliases for internal types exposed through the Engine API.
// These are Go type aliases (=), identical to the internal types at compile
// time, so no conversion is ever needed.

type Declaration = lang.Declaration
type Param = lang.Param
type Kind = lang.Kind

type Category = change.Category
type ChangeKind = change.ChangeKind
type DeclarationChange = change.DeclarationChange
type Result = change.Result
type Summary = change.Summary

type Graph = graph.Graph
type Snapshot = store.Snapshot
type Config = config.Config

// Declaration kinds.
const (
	KindFunction  = lang.KindFunction
	KindClass     = lang.KindClass
	KindMethod    = lang.KindMethod
	KindVariable  = lang.KindVariable
	KindConstant  = lang.KindConstant
	KindInterface = lang.KindInterface
)

// Semantic-change categories.
const (
	Breaking = change.Breaking
	Additive = change.Additive
	Internal = change.Internal
	DocsOnly = change.DocsOnly
	Unknown  = change.Unknown
)
