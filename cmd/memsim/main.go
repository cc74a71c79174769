// Command memsim runs a cycle-level timing simulation of a multi-core TLB
// and cache hierarchy driven by a synthetic access stream.
package main

func main() {
	Execute()
}
