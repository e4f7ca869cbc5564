package automation

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/nadzzz/jarvis/internal/message"
)

// Simulator is an in-process host that performs nothing and reports
// plausible results. It backs dry runs (`jarvis parse`, automation.mode
// "simulated") and tests.
type Simulator struct {
	mu      sync.Mutex
	calls   []Call
	fail    map[string]error
	started time.Time

	// Delay, when set, is slept before each Invoke (honouring ctx).
	Delay time.Duration
}

// NewSimulator creates an empty simulator.
func NewSimulator() *Simulator {
	return &Simulator{fail: make(map[string]error), started: time.Now()}
}

// Name returns the host identifier.
func (s *Simulator) Name() string { return "simulated" }

// FailWith makes every later call for key return err. A nil err clears it.
func (s *Simulator) FailWith(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, key)
		return
	}
	s.fail[key] = err
}

// Calls returns a copy of every call received so far.
func (s *Simulator) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Invoke records the call and returns canned data for it.
func (s *Simulator) Invoke(ctx context.Context, call Call) (*Result, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	err := s.fail[call.CommandKey]
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &Result{Data: cannedData(call)}, nil
}

func cannedData(call Call) map[string]any {
	switch call.CommandKey {
	case "take_screenshot":
		return map[string]any{"path": "screenshot_" + time.Now().Format("20060102_150405") + ".png"}
	case "ocr_image", "ocr_pdf":
		return map[string]any{"chars": 0}
	case "search_files":
		return map[string]any{"count": 0, "files": []string{}}
	case "battery":
		return map[string]any{"percent": 100, "plugged": true}
	case "open_folder":
		return map[string]any{"folder": call.Args["folder"]}
	case "system_status":
		return map[string]any{"summary": "all systems normal"}
	default:
		return nil
	}
}

// Status reports the daemon's own process as the host snapshot.
func (s *Simulator) Status(ctx context.Context) (message.SystemStatusSnapshot, error) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	host, _ := os.Hostname()

	return message.SystemStatusSnapshot{
		"host":       host,
		"os":         runtime.GOOS,
		"cpu_count":  runtime.NumCPU(),
		"goroutines": runtime.NumGoroutine(),
		"memory_mb":  mem.Alloc / (1 << 20),
		"uptime_s":   int64(time.Since(s.started).Seconds()),
		"simulated":  true,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}, nil
}
