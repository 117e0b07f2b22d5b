package master

import (
	"sync"
	"time"
)

// Poller drives background class polls, one ticker goroutine per
// configured interval. The cyclic-timer-plus-stop-channel shape
// follows the same pattern as the teacher-adjacent corpus's cyclic
// PDO transmission loop (samsamfire-gocanopen's pdo.TPDO), generalized
// from a single timer to one per event class.
type Poller struct {
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// StartPolling launches one goroutine per class whose configured
// interval is nonzero (Class1PollInterval, Class2PollInterval,
// Class3PollInterval), each calling ReadClass on its own ticker.
// onResult is invoked with a successful poll's result; onError with
// any ReadClass failure. Either callback may be nil. The returned
// Poller's Stop halts every goroutine and waits for them to exit.
func (m *Master) StartPolling(onResult func(class int, pr *PollResult), onError func(class int, err error)) *Poller {
	p := &Poller{stopCh: make(chan struct{})}
	intervals := [3]time.Duration{m.cfg.Class1PollInterval, m.cfg.Class2PollInterval, m.cfg.Class3PollInterval}
	for i, interval := range intervals {
		if interval <= 0 {
			continue
		}
		class := i + 1
		p.wg.Add(1)
		go p.run(m, class, interval, onResult, onError)
	}
	return p
}

func (p *Poller) run(m *Master, class int, interval time.Duration, onResult func(int, *PollResult), onError func(int, error)) {
	defer p.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			pr, err := m.ReadClass(class)
			if err != nil {
				if onError != nil {
					onError(class, err)
				}
				continue
			}
			if onResult != nil {
				onResult(class, pr)
			}
		}
	}
}

// Stop halts every ticker goroutine started by StartPolling and waits
// for them to exit. Safe to call once; a nil Poller's Stop is a no-op.
func (p *Poller) Stop() {
	if p == nil {
		return
	}
	close(p.stopCh)
	p.wg.Wait()
}
