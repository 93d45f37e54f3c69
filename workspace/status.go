package workspace

import (
	"context"
	"time"

	"cardgen-server/latch"

	"golang.org/x/sync/errgroup"
)

// statusTimeout bounds one status probe.
const statusTimeout = 5 * time.Second

// BackendStatus is the result of probing one backend.
type BackendStatus struct {
	Reachable bool   `json:"reachable"`
	InFlight  bool   `json:"inFlight"`
	Error     string `json:"error,omitempty"`
}

// Status describes the backends for a status indicator.
type Status struct {
	Generation BackendStatus `json:"generation"`
	Upload     BackendStatus `json:"upload"`
	Cards      int           `json:"cards"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Status probes both backends concurrently. A failed probe is reported, not returned.
func (w *Workspace) Status(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	st := Status{
		Generation: BackendStatus{InFlight: w.generating.State() == latch.InFlight},
		Upload:     BackendStatus{InFlight: w.uploading.State() == latch.InFlight},
		Cards:      w.cards.Len(),
	}

	var g errgroup.Group
	g.Go(func() error {
		if w.gen != nil {
			probe(ctx, w.gen, &st.Generation)
		} else {
			st.Generation.Error = "not configured"
		}
		return nil
	})
	g.Go(func() error {
		if w.up != nil {
			probe(ctx, w.up, &st.Upload)
		} else {
			st.Upload.Error = "not configured"
		}
		return nil
	})
	g.Wait()

	return st
}

func probe(ctx context.Context, p pinger, st *BackendStatus) {
	if err := p.Ping(ctx); err != nil {
		st.Error = err.Error()
		return
	}
	st.Reachable = true
}
