package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/joshuapare/fenceheap/heap"
	"github.com/joshuapare/fenceheap/internal/script"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newReplCmd())
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Drive a heap interactively",
		Long: `The repl command sets up a heap and reads commands from the terminal.
Allocations are bound to names p1, p2, ... that later commands accept, as
do raw addresses (0x1030) and name offsets (p1+16, p1-1). Type help for the
command list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newREPL(cmd.OutOrStdout(), regionSpec())
			if err != nil {
				return err
			}
			defer r.close()
			return r.run()
		},
	}
}

const replHelp = `commands:
  malloc N          allocate N bytes
  calloc N M        allocate N elements of M bytes, zeroed
  realloc P N       resize P to N bytes
  free P            release P
  write P TEXT      copy TEXT to P, unchecked
  overrun P N       write N bytes past the end of P's payload
  classify P        classify an address
  validate          check heap integrity
  largest           largest live payload
  dump              list chunks
  stats             heap counters
  reset             tear down and start over
  quit              leave`

// REPL is the interactive command loop.
type REPL struct {
	spec    script.RegionSpec
	h       *heap.Heap
	cleanup func()
	ptrs    map[string]heap.Addr
	seq     int
	out     io.Writer
	liner   *liner.State
}

func newREPL(out io.Writer, spec script.RegionSpec) (*REPL, error) {
	r := &REPL{spec: spec, out: out}
	if err := r.reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// historyFile returns the path to the history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".heapctl_history")
}

func (r *REPL) run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()
	r.liner.SetCtrlCAborts(true)

	if path := historyFile(); path != "" {
		if f, err := os.Open(path); err == nil {
			r.liner.ReadHistory(f)
			f.Close()
		}
	}
	defer r.saveHistory()

	fmt.Fprintf(r.out, "heapctl repl (%s region, limit %s); type help\n", kindName(r.spec.Kind), sizeString(uint64(r.spec.Limit)))
	for {
		line, err := r.liner.Prompt("heap> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)
		if r.exec(line) {
			return nil
		}
	}
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) close() {
	if r.h != nil {
		r.h.Teardown()
	}
	if r.cleanup != nil {
		r.cleanup()
	}
	r.h, r.cleanup = nil, nil
}

func (r *REPL) reset() error {
	r.close()
	h, _, cleanup, err := openHeap(r.spec)
	if err != nil {
		return err
	}
	r.h, r.cleanup = h, cleanup
	r.ptrs = map[string]heap.Addr{}
	r.seq = 0
	return nil
}

// exec runs one command line and reports whether the loop should end.
func (r *REPL) exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]
	if r.h == nil && cmd != "reset" && cmd != "quit" && cmd != "exit" {
		fmt.Fprintln(r.out, "error: no heap; use reset")
		return false
	}
	if err := r.dispatch(cmd, args, line); err != nil {
		if errors.Is(err, errQuit) {
			return true
		}
		fmt.Fprintln(r.out, "error:", err)
	}
	return false
}

var errQuit = errors.New("quit")

func (r *REPL) dispatch(cmd string, args []string, line string) error {
	h := r.h
	switch cmd {
	case "malloc":
		n, err := intArgs(args, 1)
		if err != nil {
			return err
		}
		r.report(h.Malloc(n[0]), "")
	case "calloc":
		n, err := intArgs(args, 2)
		if err != nil {
			return err
		}
		r.report(h.Calloc(n[0], n[1]), "")
	case "realloc":
		if len(args) != 2 {
			return errors.New("usage: realloc P N")
		}
		p, err := r.ptr(args[0])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		name := ""
		if _, ok := r.ptrs[args[0]]; ok {
			name = args[0]
		}
		r.report(h.Realloc(p, n), name)
	case "free":
		p, err := r.onePtr(args, "free P")
		if err != nil {
			return err
		}
		if err := h.Release(p); err != nil {
			return err
		}
	case "write":
		if len(args) < 2 {
			return errors.New("usage: write P TEXT")
		}
		p, err := r.ptr(args[0])
		if err != nil {
			return err
		}
		return r.store(p, []byte(skipFields(line, 2)))
	case "overrun":
		if len(args) != 2 {
			return errors.New("usage: overrun P N")
		}
		p, err := r.ptr(args[0])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return fmt.Errorf("bad count %q", args[1])
		}
		payload := h.Payload(p)
		if payload == nil {
			return fmt.Errorf("%s is not a valid block", args[0])
		}
		return r.store(p+heap.Addr(len(payload)), []byte(strings.Repeat("\xaa", n)))
	case "classify":
		p, err := r.onePtr(args, "classify P")
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, h.Classify(p))
	case "validate":
		fmt.Fprintln(r.out, h.Validate())
		if err := h.Check(); err != nil {
			fmt.Fprintln(r.out, " ", err)
		}
	case "largest":
		fmt.Fprintln(r.out, sizeString(uint64(h.LargestUsedBlockSize())))
	case "dump":
		printChunks(r.out, h)
	case "stats":
		printStats(r.out, h.Stats())
	case "reset":
		return r.reset()
	case "help", "?":
		fmt.Fprintln(r.out, replHelp)
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

// report prints an allocation result and binds it to name, or to the next
// pN name when name is empty.
func (r *REPL) report(p heap.Addr, name string) {
	if p == heap.Nil {
		fmt.Fprintln(r.out, "null")
		return
	}
	if name == "" {
		r.seq++
		name = "p" + strconv.Itoa(r.seq)
	}
	r.ptrs[name] = p
	fmt.Fprintf(r.out, "%s = %s\n", name, p)
}

func (r *REPL) onePtr(args []string, usage string) (heap.Addr, error) {
	if len(args) != 1 {
		return 0, errors.New("usage: " + usage)
	}
	return r.ptr(args[0])
}

// ptr resolves a name, "null" or a number, optionally followed by +N or -N.
func (r *REPL) ptr(arg string) (heap.Addr, error) {
	base, off := arg, int64(0)
	if i := strings.LastIndexAny(arg, "+-"); i > 0 {
		n, err := strconv.ParseInt(arg[i:], 0, 64)
		if err != nil {
			return 0, fmt.Errorf("bad offset in %q", arg)
		}
		base, off = arg[:i], n
	}
	var p heap.Addr
	switch {
	case base == "null":
	case r.ptrs[base] != heap.Nil:
		p = r.ptrs[base]
	default:
		n, err := strconv.ParseUint(base, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("unknown pointer %q", base)
		}
		p = heap.Addr(n)
	}
	return p + heap.Addr(off), nil
}

func (r *REPL) store(at heap.Addr, data []byte) error {
	dst, ok := r.h.Bytes(at, len(data))
	if !ok {
		return fmt.Errorf("%d bytes at %s are outside the heap", len(data), at)
	}
	copy(dst, data)
	return nil
}

// skipFields drops the first n whitespace-separated fields of line.
func skipFields(line string, n int) string {
	s := strings.TrimSpace(line)
	for range n {
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			return ""
		}
		s = strings.TrimLeftFunc(s[i:], unicode.IsSpace)
	}
	return s
}

func intArgs(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", a)
		}
		out[i] = v
	}
	return out, nil
}

func kindName(kind string) string {
	if kind == "" {
		return "buffer"
	}
	return kind
}
