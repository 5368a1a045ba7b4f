// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package buffer

// FrameID is the index of a frame in the buffer pool
type FrameID uint32

// ClockReplacer picks victims among unpinned frames with the clock (second
// chance) policy. The hand sweeps frames in id order and a frame is skipped
// once after each unpin.
// It is not goroutine safe. BufferPoolManager calls it with its mutex held.
type ClockReplacer struct {
	candidate []bool // frame may be victimized
	ref       []bool
	hand      int
	size      uint32
}

func NewClockReplacer(poolSize uint32) *ClockReplacer {
	return &ClockReplacer{
		candidate: make([]bool, poolSize),
		ref:       make([]bool, poolSize),
	}
}

// Victim removes and returns a frame to evict, or nil when every frame is pinned
func (c *ClockReplacer) Victim() *FrameID {
	if c.size == 0 {
		return nil
	}
	for {
		i := c.hand
		c.hand = (c.hand + 1) % len(c.candidate)
		if !c.candidate[i] {
			continue
		}
		if c.ref[i] {
			c.ref[i] = false
			continue
		}
		c.candidate[i] = false
		c.size--
		frameID := FrameID(i)
		return &frameID
	}
}

// Unpin makes the frame evictable. Unpinning an evictable frame is a no-op.
func (c *ClockReplacer) Unpin(id FrameID) {
	if c.candidate[id] {
		return
	}
	c.candidate[id] = true
	c.ref[id] = true
	c.size++
}

// Pin withdraws the frame from eviction
func (c *ClockReplacer) Pin(id FrameID) {
	if !c.candidate[id] {
		return
	}
	c.candidate[id] = false
	c.size--
}

func (c *ClockReplacer) isContain(id FrameID) bool {
	return c.candidate[id]
}

// Size returns the number of evictable frames
func (c *ClockReplacer) Size() uint32 {
	return c.size
}
