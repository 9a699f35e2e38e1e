package heap

// Malloc is Alloc with failure reported as Nil.
func (h *Heap) Malloc(size int) Addr {
	p, err := h.Alloc(size)
	if err != nil {
		h.debugFail("malloc", err)
	}
	return p
}

// Calloc is AllocZeroed with failure reported as Nil.
func (h *Heap) Calloc(count, elemSize int) Addr {
	p, err := h.AllocZeroed(count, elemSize)
	if err != nil {
		h.debugFail("calloc", err)
	}
	return p
}

// Realloc is Resize with failure reported as Nil. Nil is also the result of
// a successful release through a size below 1.
func (h *Heap) Realloc(ptr Addr, size int) Addr {
	p, err := h.Resize(ptr, size)
	if err != nil {
		h.debugFail("realloc", err)
	}
	return p
}

// Free is Release that ignores addresses it cannot free.
func (h *Heap) Free(ptr Addr) {
	if err := h.Release(ptr); err != nil {
		h.debugFail("free", err)
	}
}

func (h *Heap) debugFail(op string, err error) {
	if h.log != nil {
		h.log.Debug("heap call failed", "op", op, "err", err)
	}
}
