package realtime

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// overlapDetector fails the race the wsWriter exists to prevent: two
// writers inside WriteJSON at the same time.
type overlapDetector struct {
	active  int32
	overlap int32
	writes  int32
}

func (d *overlapDetector) WriteJSON(any) error {
	if atomic.AddInt32(&d.active, 1) > 1 {
		atomic.StoreInt32(&d.overlap, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&d.active, -1)
	atomic.AddInt32(&d.writes, 1)
	return nil
}

func TestWSWriter_SerializesConcurrentWrites(t *testing.T) {
	detector := &overlapDetector{}
	out := &wsWriter{conn: detector}

	// One goroutine plays the event pump, the other the read loop's
	// bid replies.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				require.NoError(t, out.WriteJSON(map[string]any{"seq": j}))
			}
		}()
	}
	wg.Wait()

	require.Zero(t, atomic.LoadInt32(&detector.overlap), "connection saw concurrent writers")
	require.Equal(t, int32(40), atomic.LoadInt32(&detector.writes))
}
