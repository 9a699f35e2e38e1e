package heap

// Classify reports what addr points at. Only live chunks are considered:
// addresses inside free chunks are PointerUnallocated.
func (h *Heap) Classify(addr Addr) PointerType {
	if addr == Nil {
		return PointerNull
	}
	if h.Validate() != StatusOK {
		return PointerCorrupted
	}

	for c := h.head; c != Nil; {
		hd := h.header(c)
		if hd.isFree() {
			c = hd.next
			continue
		}
		lead := c + HeaderSize
		data := lead + FenceSize
		trail := data + Addr(hd.size)
		end := trail + FenceSize
		switch {
		case addr >= c && addr < lead:
			return PointerControlBlock
		case addr >= lead && addr < data:
			return PointerInsideFences
		case addr == data:
			return PointerValid
		case addr > data && addr < trail:
			return PointerInsideDataBlock
		case addr >= trail && addr < end:
			return PointerInsideFences
		}
		c = hd.next
	}
	return PointerUnallocated
}
