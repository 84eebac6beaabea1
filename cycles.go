package tiff

// ifdCycles detects cycles in the next-IFD chain without requiring IFDs to
// be visited in pointer order. The chain should form a forest (a tree once
// only the primary IFD and its next-links are considered); each insertion
// of a new from->to edge is checked against the union-find of components
// already known, so a cycle is caught even if its closing edge is the
// first one observed.
type ifdCycles struct {
	componentUnion map[componentID]componentID
	links          map[uint64]uint64
	chains         map[uint64]componentID
}

type componentID uint64

func newIfdCycles() *ifdCycles {
	return &ifdCycles{
		componentUnion: make(map[componentID]componentID),
		links:          make(map[uint64]uint64),
		chains:         make(map[uint64]componentID),
	}
}

// insertNext records the edge from -> to (hasTo == false meaning "no next
// IFD", in which case to is ignored).
// It returns an error wrapping CycleInOffsets if the edge closes a cycle,
// or if the same from pointer was previously linked to a different to.
func (c *ifdCycles) insertNext(from uint64, to uint64, hasTo bool) error {
	toOffset := uint64(0)
	if hasTo {
		toOffset = to
	}

	if existing, ok := c.links[from]; ok {
		if existing == toOffset {
			return nil
		}
		return errFormat(CycleInOffsets)
	}
	c.links[from] = toOffset

	c.ensureNode(from)

	if hasTo {
		c.ensureNode(to)

		parent := c.nominalComponent(from)
		child := c.nominalComponent(to)

		if parent == child {
			return errFormat(CycleInOffsets)
		}

		c.componentUnion[child] = parent
	}

	return nil
}

func (c *ifdCycles) ensureNode(ifd uint64) {
	if _, ok := c.chains[ifd]; ok {
		return
	}
	id := componentID(len(c.componentUnion))
	c.componentUnion[id] = id
	c.chains[ifd] = id
}

func (c *ifdCycles) nominalComponent(node uint64) componentID {
	id := c.chains[node]

	nominal := id
	for {
		parent := c.componentUnion[nominal]
		if parent == nominal {
			break
		}
		nominal = parent
	}

	if nominal != id {
		iter := id
		for {
			parent := c.componentUnion[iter]
			if parent == iter {
				break
			}
			c.componentUnion[iter] = nominal
			iter = parent
		}
	}

	return nominal
}
