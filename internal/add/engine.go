// Package add implements the trackd add engine: it decides which files
// belong to which component, derives or validates identifiers, separates
// source from test files, resolves main files, and reconciles the result
// against the persistent index.
package add

import (
	"path/filepath"
	"sync"

	"trackd/internal/config"
	"trackd/internal/id"
	"trackd/internal/index"
	"trackd/internal/log"
	"trackd/pkg/types"
)

// Request describes one add invocation.
type Request struct {
	// Paths are the component paths: files, directories, or glob patterns.
	Paths []string
	// ID is an optional explicit component identifier string.
	ID string
	// MainFile is an optional main-file pattern, literal or DSL.
	MainFile string
	// Namespace overrides the namespace derived from path segments.
	Namespace string
	// TestPatterns are DSL patterns locating companion test files.
	TestPatterns []string
	// ExcludePatterns are DSL patterns stripping files from the result.
	ExcludePatterns []string
	// Override replaces an existing record's file set instead of merging.
	Override bool
}

// Result is the outcome of a successful add: every component actually added
// or updated, plus warnings about files dropped due to ownership conflicts.
type Result struct {
	Components []types.AddedComponent
	Warnings   types.Warnings
}

// Engine runs add operations against one configuration and one loaded
// index. The index is mutated in memory only; the caller persists it after
// a successful run.
type Engine struct {
	cfg  *config.Config
	idx  *index.Index
	root string

	ignore *ignoreFilter

	// per-invocation cache of the filtered tracking tree
	treeOnce sync.Once
	tree     []string
	treeErr  error
}

// New creates an add engine rooted at the configured tracking root.
func New(cfg *config.Config, idx *index.Index) (*Engine, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, idx: idx, root: root}, nil
}

// Add runs one add invocation. Fatal errors abort before any index
// mutation reaches storage; the caller persists the index only on success.
func (e *Engine) Add(req Request) (*Result, error) {
	e.ignore = e.newIgnoreFilter()
	e.treeOnce = sync.Once{}
	e.applyDefaults(&req)

	// An explicit id is validated once per invocation, not per path.
	var explicit *id.ComponentID
	if req.ID != "" {
		parsed, err := id.Parse(req.ID)
		if err != nil {
			return nil, err
		}
		explicit = &parsed
	}

	expanded, err := e.expandPaths(req.Paths)
	if err != nil {
		return nil, err
	}
	inputs, err := e.validatePaths(expanded)
	if err != nil {
		return nil, err
	}

	groups, err := e.resolveAll(inputs, &req)
	if err != nil {
		return nil, err
	}

	// Everything from here on reads or mutates the index, strictly after
	// the resolution goroutines have joined.
	for _, g := range groups {
		if g.files.Len() == 0 {
			continue
		}
		if err := e.promoteID(g, explicit); err != nil {
			return nil, err
		}
	}

	comps, err := e.aggregate(groups, explicit)
	if err != nil {
		return nil, err
	}
	comps, err = e.applyExcludes(comps, req.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	result := &Result{Warnings: make(types.Warnings)}
	for _, comp := range comps {
		added, err := e.reconcile(comp, explicit, req.Override, result.Warnings)
		if err != nil {
			return nil, err
		}
		if added != nil {
			result.Components = append(result.Components, *added)
		}
	}

	log.Info("add resolved %d component(s), %d warning(s)", len(result.Components), len(result.Warnings))
	return result, nil
}

// resolveAll resolves every path group concurrently and joins before
// returning. The first resolution error aborts the invocation; the index is
// never touched from these goroutines.
func (e *Engine) resolveAll(inputs []inputPath, req *Request) ([]*component, error) {
	soleDir := len(inputs) == 1 && inputs[0].isDir

	groups := make([]*component, len(inputs))
	errs := make([]error, len(inputs))

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in inputPath) {
			defer wg.Done()
			groups[i], errs[i] = e.resolvePath(in, req, soleDir)
		}(i, in)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// applyDefaults fills request fields left empty from the configuration.
func (e *Engine) applyDefaults(req *Request) {
	if len(req.TestPatterns) == 0 {
		req.TestPatterns = e.cfg.Defaults.TestPatterns
	}
	if req.MainFile == "" {
		req.MainFile = e.cfg.Defaults.MainFile
	}
	if req.Namespace == "" {
		req.Namespace = e.cfg.Defaults.Namespace
	}
}

// Index exposes the engine's index, mainly for the status and watch
// commands.
func (e *Engine) Index() *index.Index {
	return e.idx
}
