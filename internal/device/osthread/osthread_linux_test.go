package osthread

import (
	"syscall"
	"testing"
)

func TestCallsRunOnInitThread(t *testing.T) {
	var initTid int
	th, err := Start(func() error {
		initTid = syscall.Gettid()
		return nil
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer th.Close()

	for i := 0; i < 20; i++ {
		done := make(chan int)
		go func() {
			var tid int
			th.Do(func() { tid = syscall.Gettid() })
			done <- tid
		}()
		if tid := <-done; tid != initTid {
			t.Fatalf("call %d ran on thread %d; init ran on %d", i, tid, initTid)
		}
	}
}
