package controllino

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func pendingCmd(id JobID) *GetSignal {
	c := NewGetSignal("A0")
	c.job, c.hasJob = id, true
	return c
}

func TestPendingTable(t *testing.T) {
	pt := NewPendingTable()

	c1, c2, c3 := pendingCmd(1), pendingCmd(2), pendingCmd(3)
	pt.Insert(c1)
	pt.Insert(c2)
	pt.Insert(c3)

	if diff := cmp.Diff([]JobID{1, 2, 3}, pt.Jobs()); diff != "" {
		t.Error("jobs mismatch (-exp +got):\n", diff)
	}

	i, c := pt.Find(2)
	if i != 1 || c != c2 {
		t.Fatalf("find 2: %v, %v", i, c)
	}

	if i, c := pt.Find(9); i != -1 || c != nil {
		t.Fatalf("find 9: %v, %v", i, c)
	}

	if pt.Remove(i) != c2 {
		t.Fatal("removed wrong command")
	}

	if pt.Remove(5) != nil {
		t.Fatal("remove out of range should return nil")
	}

	if diff := cmp.Diff([]JobID{1, 3}, pt.Jobs()); diff != "" {
		t.Error("jobs after remove mismatch (-exp +got):\n", diff)
	}
}

func TestPendingTableRemoveJob(t *testing.T) {
	pt := NewPendingTable()

	const count = 100

	for i := 1; i <= count; i++ {
		pt.Insert(pendingCmd(JobID(i)))
	}

	if _, ok := pt.RemoveJob(count + 1); ok {
		t.Fatal("removed a job that was never inserted")
	}

	// odd jobs complete while even jobs are removed, indices shift under
	// both goroutines
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 1; i <= count; i += 2 {
			r, err := NewReply(map[string]interface{}{
				"command": "RX_GET_INPUT", "level": 1, "job": i})
			if err != nil {
				t.Error("Error creating reply: ", err)
				return
			}
			if _, found, done, _ := pt.Complete(JobID(i), r); !found || !done {
				t.Errorf("complete %v: found %v, done %v", i, found, done)
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 2; i <= count; i += 2 {
			c, ok := pt.RemoveJob(JobID(i))
			if !ok {
				t.Errorf("job %v not found", i)
				continue
			}
			if id, _ := c.Job(); id != JobID(i) {
				t.Errorf("removing job %v returned job %v", i, id)
			}
		}
	}()

	wg.Wait()

	if pt.Len() != 0 {
		t.Fatal("jobs left: ", pt.Jobs())
	}
}

func TestPendingTableComplete(t *testing.T) {
	pt := NewPendingTable()
	c := pendingCmd(4)
	pt.Insert(c)

	_, found, _, _ := pt.Complete(5, reply(t, map[string]interface{}{"command": "RX_GET_INPUT", "job": 5}))
	if found {
		t.Fatal("found job 5")
	}

	// unrelated reply leaves the command pending
	cmd, found, done, err := pt.Complete(4, reply(t, map[string]interface{}{"command": "RX_READY", "job": 4}))
	if !found || done || err != nil || cmd != c {
		t.Fatalf("unrelated reply: %v %v %v %v", cmd, found, done, err)
	}

	if pt.Len() != 1 {
		t.Fatal("command removed by unrelated reply")
	}

	_, found, done, err = pt.Complete(4, reply(t, map[string]interface{}{
		"command": "RX_GET_INPUT", "level": 1, "job": 4}))
	if !found || !done || err != nil {
		t.Fatalf("reply: %v %v %v", found, done, err)
	}

	if pt.Len() != 0 {
		t.Fatal("command not removed when done")
	}
}
