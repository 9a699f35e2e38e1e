package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/joshuapare/fenceheap/heap"
	"github.com/joshuapare/fenceheap/internal/script"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// sizeString renders a byte count with digit grouping.
func sizeString(n uint64) string {
	if n == 1 {
		return "1 byte"
	}
	return printer.Sprintf("%d bytes", n)
}

func printReport(w io.Writer, name string, rep *script.Report) {
	fmt.Fprintf(w, "%s\n", name)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\top\tresult\texpect\t")
	for _, st := range rep.Steps {
		mark := "ok"
		if !st.OK {
			mark = "FAIL"
		}
		result := st.Result
		if st.Err != "" {
			result = "error: " + st.Err
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", st.Index, st.Op, result, st.Expect, mark)
	}
	tw.Flush()
	if rep.OK() {
		fmt.Fprintf(w, "  all %d steps passed\n", len(rep.Steps))
	} else {
		fmt.Fprintf(w, "  %d of %d steps failed\n", rep.Failed, len(rep.Steps))
	}
}

func printStats(w io.Writer, st heap.Stats) {
	fmt.Fprintf(w, "status:      %s\n", st.Status)
	fmt.Fprintf(w, "chunks:      %d (%d used, %d free)\n", st.Chunks, st.UsedChunks, st.FreeChunks)
	fmt.Fprintf(w, "used:        %s\n", sizeString(st.UsedBytes))
	fmt.Fprintf(w, "free:        %s\n", sizeString(st.FreeBytes))
	fmt.Fprintf(w, "overhead:    %s\n", sizeString(st.OverheadSize))
	fmt.Fprintf(w, "region:      %s\n", sizeString(st.RegionSize))
	fmt.Fprintf(w, "largest:     %s\n", sizeString(uint64(st.LargestUsed)))
}

func printChunks(w io.Writer, h *heap.Heap) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "chunk\tpayload\tsize\tstate\tprev\tnext\t")
	n := 0
	for ci := range h.Chunks() {
		state := "used"
		if ci.Free() {
			state = "free"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t\n",
			ci.Addr, ci.Payload(), ci.Size, state, addrString(ci.Prev), addrString(ci.Next))
		n++
	}
	tw.Flush()
	if n == 0 {
		fmt.Fprintln(w, "(empty)")
	}
}

func addrString(a heap.Addr) string {
	if a == heap.Nil {
		return "null"
	}
	return a.String()
}
