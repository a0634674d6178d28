package engine

import "errors"

// ErrReenterSequential is returned by runThreaded when threaded mode degrades
// at the deferred-logging threshold (spec.md §4.7). The degrading cycle's
// postamble has already run to completion; (*Engine).Run catches it and
// continues in sequential mode starting at the next cycle, so it never
// reaches Run's own caller (spec.md §9 design note).
var ErrReenterSequential = errors.New("engine: threaded mode degraded, re-enter sequentially")
