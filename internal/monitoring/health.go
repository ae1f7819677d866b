package monitoring

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/harborlight/scout-cli/internal/store"
)

const probeKey = "monitoring/probe"

// CheckStore verifies the persistence backend with a write-read
// round trip on a probe key.
func CheckStore(ctx context.Context, st store.Store) error {
	want := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))

	if err := st.Set(ctx, probeKey, want); err != nil {
		return eris.Wrap(err, "monitoring: probe write")
	}
	got, err := st.Get(ctx, probeKey)
	if err != nil {
		return eris.Wrap(err, "monitoring: probe read")
	}
	if !bytes.Equal(got, want) {
		return eris.New("monitoring: probe read returned stale data")
	}
	return nil
}
