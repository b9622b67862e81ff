package listing

import (
	"sync"
	"time"

	"github.com/romdo/go-debounce"
)

// Debouncer coalesces rapid query edits into one delivery per quiet window.
// The latest query is delivered on C; older undelivered values are replaced.
type Debouncer struct {
	mu      sync.Mutex
	latest  string
	out     chan string
	trigger func()
	cancel  func()
	once    sync.Once
}

// NewDebouncer fires after wait of quiescence, and at least every 4*wait
// while input keeps arriving. A zero wait delivers immediately.
func NewDebouncer(wait time.Duration) *Debouncer {
	d := &Debouncer{out: make(chan string, 1)}
	if wait <= 0 {
		d.trigger = d.deliver
		d.cancel = func() {}
		return d
	}
	d.trigger, d.cancel = debounce.NewWithMaxWait(wait, 4*wait, d.deliver)
	return d
}

// Trigger records q and (re)starts the quiet window.
func (d *Debouncer) Trigger(q string) {
	d.mu.Lock()
	d.latest = q
	d.mu.Unlock()
	d.trigger()
}

func (d *Debouncer) deliver() {
	d.mu.Lock()
	q := d.latest
	d.mu.Unlock()
	select {
	case <-d.out:
	default:
	}
	select {
	case d.out <- q:
	default:
	}
}

// C delivers settled queries.
func (d *Debouncer) C() <-chan string {
	return d.out
}

// Stop cancels any pending delivery.
func (d *Debouncer) Stop() {
	d.once.Do(d.cancel)
}
