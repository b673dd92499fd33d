package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// VerifyResult holds the outcome of re-checking a duplicate group.
type VerifyResult struct {
	Matched    []FileRecord
	Mismatched []VerifyError
}

// OK reports whether every member still matches the group hash.
func (r VerifyResult) OK() bool {
	return len(r.Mismatched) == 0
}

// VerifyError records a member whose content no longer matches.
type VerifyError struct {
	Path     string
	Expected string
	Actual   string // empty when the file could not be hashed
	Err      error
}

// VerifyGroup re-hashes every member of group and splits them into those
// whose content still hashes to group.Hash and those that don't. Members are
// hashed on up to workers goroutines; order within each list follows the
// group.
func VerifyGroup(ctx context.Context, group DuplicateGroup, workers int) (VerifyResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type outcome struct {
		digest string
		err    error
	}
	outcomes := make([]outcome, len(group.Files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range group.Files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			digest, err := HashFile(f.Path)
			outcomes[i] = outcome{digest: digest, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return VerifyResult{}, err
	}

	var res VerifyResult
	for i, f := range group.Files {
		o := outcomes[i]
		if o.err == nil && o.digest == group.Hash {
			res.Matched = append(res.Matched, f)
			continue
		}
		res.Mismatched = append(res.Mismatched, VerifyError{
			Path:     f.Path,
			Expected: group.Hash,
			Actual:   o.digest,
			Err:      o.err,
		})
	}
	return res, nil
}

// MatchReference hashes reference and checks each path against it. It is
// the guard used before removing copies of a file that is being kept.
func MatchReference(ctx context.Context, reference string, paths []string, workers int) (VerifyResult, error) {
	digest, err := HashFile(reference)
	if err != nil {
		return VerifyResult{}, err
	}
	group := DuplicateGroup{Hash: digest, Files: make([]FileRecord, len(paths))}
	for i, p := range paths {
		group.Files[i] = FileRecord{Path: p}
	}
	return VerifyGroup(ctx, group, workers)
}
