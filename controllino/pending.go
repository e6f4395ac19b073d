package controllino

import (
	"sync"

	"golang.org/x/exp/slices"
)

// PendingTable holds the commands waiting for replies, in submission
// order. All methods are safe for concurrent use; the lock is only held for
// the duration of a call.
type PendingTable struct {
	m    sync.Mutex
	cmds []Command
}

// NewPendingTable returns an empty table
func NewPendingTable() *PendingTable {
	return &PendingTable{}
}

func (pt *PendingTable) index(id JobID) int {
	return slices.IndexFunc(pt.cmds, func(c Command) bool {
		j, ok := c.Job()
		return ok && j == id
	})
}

// Insert appends cmd. cmd must already have a job id.
func (pt *PendingTable) Insert(cmd Command) {
	pt.m.Lock()
	defer pt.m.Unlock()
	pt.cmds = append(pt.cmds, cmd)
}

// Find returns the index and command holding id, or -1 and nil
func (pt *PendingTable) Find(id JobID) (int, Command) {
	pt.m.Lock()
	defer pt.m.Unlock()

	i := pt.index(id)
	if i < 0 {
		return -1, nil
	}
	return i, pt.cmds[i]
}

// Remove deletes the command at index i and returns it
func (pt *PendingTable) Remove(i int) Command {
	pt.m.Lock()
	defer pt.m.Unlock()

	if i < 0 || i >= len(pt.cmds) {
		return nil
	}

	cmd := pt.cmds[i]
	pt.cmds = slices.Delete(pt.cmds, i, i+1)
	return cmd
}

// RemoveJob deletes the command holding id and returns it. Lookup and
// removal happen under one lock hold. ok is false if no command holds id.
func (pt *PendingTable) RemoveJob(id JobID) (Command, bool) {
	pt.m.Lock()
	defer pt.m.Unlock()

	i := pt.index(id)
	if i < 0 {
		return nil, false
	}

	cmd := pt.cmds[i]
	pt.cmds = slices.Delete(pt.cmds, i, i+1)
	return cmd, true
}

// Complete looks up the command holding id and feeds it r, removing the
// command if it reports done. Lookup, update and removal happen under one
// lock hold. found is false if no command holds id.
func (pt *PendingTable) Complete(id JobID, r Reply) (cmd Command, found, done bool, err error) {
	pt.m.Lock()
	defer pt.m.Unlock()

	i := pt.index(id)
	if i < 0 {
		return nil, false, false, nil
	}

	cmd = pt.cmds[i]
	done, err = cmd.Update(r)
	if done {
		pt.cmds = slices.Delete(pt.cmds, i, i+1)
	}

	return cmd, true, done, err
}

// Len returns the number of pending commands
func (pt *PendingTable) Len() int {
	pt.m.Lock()
	defer pt.m.Unlock()
	return len(pt.cmds)
}

// Jobs returns the job ids of all pending commands in submission order
func (pt *PendingTable) Jobs() []JobID {
	pt.m.Lock()
	defer pt.m.Unlock()

	ret := make([]JobID, 0, len(pt.cmds))
	for _, c := range pt.cmds {
		if j, ok := c.Job(); ok {
			ret = append(ret, j)
		}
	}
	return ret
}
