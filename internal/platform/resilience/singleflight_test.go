package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_DeduplicatesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var calls int32
	var shared int32

	fn := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return "value", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err, wasShared := flight.Do("key", fn)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if value != "value" {
				t.Errorf("unexpected value %v", value)
			}
			if wasShared {
				atomic.AddInt32(&shared, 1)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one execution, got=%d", got)
	}
	if got := atomic.LoadInt32(&shared); got != 7 {
		t.Fatalf("expected seven shared results, got=%d", got)
	}
}

func TestSingleFlight_SequentialCallsRunSeparately(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var calls int

	for i := 0; i < 3; i++ {
		_, err, shared := flight.Do("key", func() (any, error) {
			calls++
			return calls, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if shared {
			t.Fatal("sequential call must not report a shared result")
		}
	}
	if calls != 3 {
		t.Fatalf("expected three executions, got=%d", calls)
	}
}

func TestSingleFlight_DistinctKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var wg sync.WaitGroup
	results := make([]any, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			results[i], _, _ = flight.Do(key, func() (any, error) {
				return key, nil
			})
		}(i)
	}
	wg.Wait()

	if results[0] == results[1] {
		t.Fatal("distinct keys must run independent calls")
	}
}
