package enhance

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// AssetKind distinguishes how an asset is processed.
type AssetKind int

const (
	KindAudio AssetKind = iota
	KindVideo
)

// audioExtensions lists containers handled by the audio path. Anything
// else goes through the video path, which probes before committing.
var audioExtensions = map[string]bool{
	".wav":  true,
	".flac": true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".opus": true,
	".aac":  true,
	".aiff": true,
}

// DetectKind classifies an asset by extension.
func DetectKind(path string) AssetKind {
	if audioExtensions[strings.ToLower(filepath.Ext(path))] {
		return KindAudio
	}
	return KindVideo
}

// Asset is one entry in a batch.
type Asset struct {
	Path string
	Kind AssetKind
}

// NewAsset builds an asset with its kind detected from the path.
func NewAsset(path string) Asset {
	return Asset{Path: path, Kind: DetectKind(path)}
}

// Batch processes several assets concurrently. Assets are independent:
// each runs its own sequential two-pass enhancement, and one asset's
// failure never aborts the others.
type Batch struct {
	Assets  []Asset
	Opts    Options
	Workers int // 0 = GOMAXPROCS

	// run is swapped in tests to exercise the pool without media IO.
	run func(ctx context.Context, index int, asset Asset, opts Options, emit EventFunc) *Result
}

// NewBatch builds a batch over the given input paths.
func NewBatch(paths []string, opts Options, workers int) *Batch {
	assets := make([]Asset, len(paths))
	for i, p := range paths {
		assets[i] = NewAsset(p)
	}
	return &Batch{Assets: assets, Opts: opts, Workers: workers}
}

// Run processes all assets and returns one result per asset in input
// order. The returned error is non-nil only for batch-level failures
// (duplicate outputs, cancellation); per-asset failures live in each
// result's Err field.
func (b *Batch) Run(ctx context.Context, emit EventFunc) ([]*Result, error) {
	if len(b.Assets) == 0 {
		return nil, nil
	}
	if err := b.checkOutputCollisions(); err != nil {
		return nil, err
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(b.Assets) {
		workers = len(b.Assets)
	}

	runAsset := b.run
	if runAsset == nil {
		runAsset = runReal
	}

	// An explicit output path only makes sense for a single asset
	opts := b.Opts
	if len(b.Assets) > 1 {
		opts.OutputPath = ""
	}

	results := make([]*Result, len(b.Assets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, asset := range b.Assets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = &Result{Path: asset.Path, Err: err}
				return nil
			}
			res := runAsset(gctx, i, asset, opts, emit)
			results[i] = res
			emit.emit(Event{
				Kind: EventAssetDone, AssetIndex: i,
				Path: asset.Path, OutputPath: res.OutputPath,
				Result: res, Err: res.Err,
			})
			// Asset failures are collected, not propagated; only
			// cancellation tears the group down
			return nil
		})
	}

	err := g.Wait()
	emit.emit(Event{Kind: EventBatchDone})
	if err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// checkOutputCollisions rejects batches where two inputs map onto the
// same output file.
func (b *Batch) checkOutputCollisions() error {
	seen := make(map[string]string, len(b.Assets))
	for _, asset := range b.Assets {
		out := OutputPath(asset.Path, "", b.Opts.OutputDir)
		abs, err := filepath.Abs(out)
		if err != nil {
			return &InputError{Path: asset.Path, Err: err}
		}
		if prev, ok := seen[abs]; ok {
			return &InputError{
				Path: asset.Path,
				Err:  fmt.Errorf("output %s collides with output of %s", out, prev),
			}
		}
		seen[abs] = asset.Path
	}
	return nil
}

func runReal(ctx context.Context, index int, asset Asset, opts Options, emit EventFunc) *Result {
	switch asset.Kind {
	case KindVideo:
		return EnhanceVideoFile(ctx, index, asset.Path, opts, emit)
	default:
		return EnhanceAudioFile(ctx, index, asset.Path, opts, emit)
	}
}

// FailedResults filters the results down to the failures.
func FailedResults(results []*Result) []*Result {
	var failed []*Result
	for _, r := range results {
		if r != nil && r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
