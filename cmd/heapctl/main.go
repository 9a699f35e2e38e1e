// Command heapctl drives a fenced heap from scenario files or an
// interactive prompt.
package main

func main() {
	execute()
}
