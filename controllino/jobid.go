package controllino

// JobID correlates a request with its replies
type JobID int

// DefaultPoolSize is the number of job ids a Session hands out by default
const DefaultPoolSize = 255

// JobIDPool dispenses and recycles job ids in FIFO order. Ids are issued
// from [0, size).
//
// A JobIDPool is not safe for concurrent use; Session guards its pool with
// the submit lock.
type JobIDPool struct {
	size  int
	queue []JobID
}

// NewJobIDPool creates a pool of size ids
func NewJobIDPool(size int) *JobIDPool {
	p := &JobIDPool{
		size:  size,
		queue: make([]JobID, size),
	}

	for i := range p.queue {
		p.queue[i] = JobID(i)
	}

	return p
}

// Acquire takes the next free id. ErrPoolExhausted is returned if all ids
// are in use.
func (p *JobIDPool) Acquire() (JobID, error) {
	if len(p.queue) == 0 {
		return 0, ErrPoolExhausted
	}

	id := p.queue[0]
	p.queue = p.queue[1:]

	return id, nil
}

// Release returns id to the pool. Releasing an id twice is not detected.
func (p *JobIDPool) Release(id JobID) {
	p.queue = append(p.queue, id)
}

// Free returns the number of ids that can be acquired
func (p *JobIDPool) Free() int {
	return len(p.queue)
}

// Size returns the capacity of the pool
func (p *JobIDPool) Size() int {
	return p.size
}
