package script

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/joshuapare/fenceheap/heap"
	"github.com/joshuapare/fenceheap/region"
)

// overrunByte fills bytes written past a payload when a step sets no byte.
const overrunByte = 0xAA

// Report is the outcome of a run.
type Report struct {
	Steps  []StepResult `json:"steps"`
	Failed int          `json:"failed"`
	Final  heap.Stats   `json:"final"`
}

// OK reports whether every step met its expectation.
func (r *Report) OK() bool { return r.Failed == 0 }

// StepResult records one executed step.
type StepResult struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	Result string `json:"result,omitempty"`
	Expect string `json:"expect,omitempty"`
	Err    string `json:"error,omitempty"`
	OK     bool   `json:"ok"`
}

// RunOption configures Run.
type RunOption func(*runner)

// WithLogger passes a logger through to the heap.
func WithLogger(l *slog.Logger) RunOption {
	return func(r *runner) {
		if l != nil {
			r.log = l
		}
	}
}

type runner struct {
	log  *slog.Logger
	src  region.Region
	h    *heap.Heap
	ptrs map[string]heap.Addr
}

// Open creates the region a RegionSpec describes. Mapped regions must be
// closed by the caller.
func Open(spec RegionSpec) (region.Region, error) {
	opts := []region.Option{}
	if spec.Limit > 0 {
		opts = append(opts, region.WithLimit(spec.Limit))
	}
	switch spec.Kind {
	case "", "buffer":
		if spec.Base != 0 {
			opts = append(opts, region.WithBase(region.Addr(spec.Base)))
		}
		return region.NewBuffer(opts...), nil
	case "mapped":
		return region.NewMapped(opts...)
	default:
		return nil, fmt.Errorf("%w: region kind %q", errInvalid, spec.Kind)
	}
}

// Run executes s on a fresh heap. Failed expectations and failed operations
// are recorded in the report; the returned error is reserved for a region or
// heap that could not be set up.
func Run(s *Script, opts ...RunOption) (*Report, error) {
	r := &runner{log: slog.New(slog.NewTextHandler(io.Discard, nil)), ptrs: map[string]heap.Addr{}}
	for _, opt := range opts {
		opt(r)
	}
	src, err := Open(s.Region)
	if err != nil {
		return nil, err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}
	r.src = src
	r.h, err = heap.New(src, heap.WithLogger(r.log))
	if err != nil {
		return nil, err
	}

	rep := &Report{Steps: make([]StepResult, 0, len(s.Steps))}
	for i, st := range s.Steps {
		res := r.step(st)
		res.Index = i
		if !res.OK {
			rep.Failed++
		}
		rep.Steps = append(rep.Steps, res)
	}
	rep.Final = r.h.Stats()
	if r.h.Initialized() {
		if err := r.h.Teardown(); err != nil {
			r.log.Warn("teardown after run failed", "err", err)
		}
	}
	return rep, nil
}

func (r *runner) step(st Step) StepResult {
	res := StepResult{Op: st.Op, Expect: expectString(st.Expect)}
	out, err := r.exec(st)
	res.Result = out
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.OK = st.Expect == nil || r.matches(st.Expect, out)
	return res
}

func (r *runner) exec(st Step) (string, error) {
	h := r.h
	switch st.Op {
	case "malloc":
		return r.bind(st.Name, h.Malloc(st.Size)), nil
	case "calloc":
		return r.bind(st.Name, h.Calloc(st.Count, st.Size)), nil
	case "realloc":
		p, err := r.resolve(st)
		if err != nil {
			return "", err
		}
		name := st.Name
		if name == "" && st.Offset == 0 && st.Ptr != "null" {
			name = st.Ptr
		}
		return r.bind(name, h.Realloc(p, st.Size)), nil
	case "free":
		p, err := r.resolve(st)
		if err != nil {
			return "", err
		}
		h.Free(p)
		return "", nil
	case "write":
		p, err := r.resolve(st)
		if err != nil {
			return "", err
		}
		return "", r.store(p, []byte(st.Data))
	case "overrun":
		p, err := r.resolve(st)
		if err != nil {
			return "", err
		}
		payload := h.Payload(p)
		if payload == nil {
			return "", fmt.Errorf("%s is not a valid block", st.Ptr)
		}
		b := st.Byte
		if b == 0 {
			b = overrunByte
		}
		fill := make([]byte, st.Count)
		for i := range fill {
			fill[i] = byte(b)
		}
		return "", r.store(p+heap.Addr(len(payload)), fill)
	case "poke":
		p, err := r.resolve(st)
		if err != nil {
			return "", err
		}
		return "", r.store(p, []byte{byte(st.Byte)})
	case "classify":
		p, err := r.resolve(st)
		if err != nil {
			return "", err
		}
		return h.Classify(p).String(), nil
	case "validate":
		return h.Validate().String(), nil
	case "largest":
		return strconv.Itoa(h.LargestUsedBlockSize()), nil
	case "teardown":
		return "", h.Teardown()
	case "setup":
		return "", h.Setup(r.src, heap.WithLogger(r.log))
	default:
		return "", fmt.Errorf("%w: unknown op %q", errInvalid, st.Op)
	}
}

func (r *runner) bind(name string, p heap.Addr) string {
	if name != "" {
		r.ptrs[name] = p
	}
	return addrString(p)
}

func (r *runner) resolve(st Step) (heap.Addr, error) {
	if st.Ptr == "" {
		return 0, errors.New("missing ptr")
	}
	var p heap.Addr
	if st.Ptr != "null" {
		var ok bool
		if p, ok = r.ptrs[st.Ptr]; !ok {
			return 0, fmt.Errorf("unknown pointer %q", st.Ptr)
		}
	}
	return p + heap.Addr(st.Offset), nil
}

func (r *runner) store(at heap.Addr, data []byte) error {
	dst, ok := r.h.Bytes(at, len(data))
	if !ok {
		return fmt.Errorf("%d bytes at %s are outside the heap", len(data), at)
	}
	copy(dst, data)
	return nil
}

// matches compares a step result with its expectation. A string names a
// status, a pointer type, "null", "non-null" or a bound pointer; a number is
// compared with an integer result.
func (r *runner) matches(want any, got string) bool {
	switch w := want.(type) {
	case float64:
		return got == strconv.FormatInt(int64(w), 10)
	case string:
		switch w {
		case "null":
			return got == "null"
		case "non-null":
			return got != "" && got != "null"
		}
		if p, ok := r.ptrs[w]; ok && got == addrString(p) {
			return true
		}
		return got == w
	default:
		return false
	}
}

func addrString(p heap.Addr) string {
	if p == heap.Nil {
		return "null"
	}
	return p.String()
}

func expectString(v any) string {
	switch w := v.(type) {
	case nil:
		return ""
	case string:
		return w
	case float64:
		return strconv.FormatFloat(w, 'f', -1, 64)
	default:
		return fmt.Sprint(w)
	}
}
