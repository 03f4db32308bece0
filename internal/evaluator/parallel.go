package evaluator

import (
	"sync"

	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/polyglot"
	"github.com/b-macker/naab/internal/runtime"
)

// blockStmt pairs a top-level polyglot block statement with the variable
// it writes (empty when its value is discarded).
type blockStmt struct {
	stmtIndex int
	code      *ast.InlineCode
	writes    string
}

// runMainParallel executes the main body with parallel-batch
// dependency analysis applied to its top-level polyglot blocks: blocks
// are partitioned into sequential groups of pairwise-independent members,
// each group runs concurrently, and every non-block statement executes
// sequentially in source order.
func (i *Interp) runMainParallel(env *runtime.Environment, body *ast.Compound) error {
	blocks := collectBlocks(body)
	if len(blocks) < 2 {
		return i.execCompound(env, body)
	}

	infos := make([]polyglot.BlockInfo, len(blocks))
	for idx, b := range blocks {
		infos[idx] = polyglot.BlockInfo{
			Index:     idx,
			StmtIndex: b.stmtIndex,
			Reads:     b.code.BoundVars,
			Writes:    b.writes,
		}
	}
	batches := polyglot.Partition(infos)

	// firstOfGroup maps a statement index to the group whose execution it
	// triggers; handled marks every statement a group consumes.
	firstOfGroup := make(map[int][]int)
	handled := make(map[int]bool)
	for _, batch := range batches {
		for _, group := range batch.Groups {
			first := blocks[group[0]].stmtIndex
			for _, bi := range group {
				if blocks[bi].stmtIndex < first {
					first = blocks[bi].stmtIndex
				}
				handled[blocks[bi].stmtIndex] = true
			}
			firstOfGroup[first] = group
		}
	}

	for idx, stmt := range body.Statements {
		if group, ok := firstOfGroup[idx]; ok {
			if err := i.runBlockGroup(env, blocks, group); err != nil {
				return err
			}
			continue
		}
		if handled[idx] {
			continue // ran as part of an earlier group
		}
		if err := i.execStmt(env, stmt); err != nil {
			return err
		}
		if i.returning || i.breaking || i.continuing {
			return nil
		}
	}
	return nil
}

// runBlockGroup executes one group of pairwise-independent blocks
// concurrently and binds each result in source order afterward, so the
// observable state matches a serial execution of the group.
func (i *Interp) runBlockGroup(env *runtime.Environment, blocks []blockStmt, group []int) error {
	results := make([]*runtime.Value, len(group))
	errs := make([]error, len(group))
	lookup := func(name string) (*runtime.Value, bool) { return env.Get(name) }

	var wg sync.WaitGroup
	for slot, bi := range group {
		wg.Add(1)
		go func(slot int, b blockStmt) {
			defer wg.Done()
			v, err := i.dispatcher.ExecuteInline(b.code.Language, b.code.Code, b.code.BoundVars, lookup)
			results[slot], errs[slot] = v, err
		}(slot, blocks[bi])
	}
	wg.Wait()

	for slot, bi := range group {
		b := blocks[bi]
		if errs[slot] != nil {
			return i.fail(diag.BlockError, b.code.Pos(), "%s block failed: %v", b.code.Language, errs[slot])
		}
		if b.writes != "" {
			v := results[slot]
			if v == nil {
				v = runtime.Null()
			}
			env.Define(b.writes, bindCell(v))
		}
		i.gc.NotifyAlloc()
	}
	return nil
}

// collectBlocks extracts the top-level polyglot block statements of a
// main body: `let x = <<lang...>>` declarations and bare `<<lang...>>`
// expression statements.
func collectBlocks(body *ast.Compound) []blockStmt {
	var out []blockStmt
	for idx, stmt := range body.Statements {
		switch s := stmt.(type) {
		case *ast.VarDecl:
			if code, ok := s.Init.(*ast.InlineCode); ok {
				out = append(out, blockStmt{stmtIndex: idx, code: code, writes: s.Name})
			}
		case *ast.ExprStmt:
			if code, ok := s.X.(*ast.InlineCode); ok {
				out = append(out, blockStmt{stmtIndex: idx, code: code})
			}
		}
	}
	return out
}
