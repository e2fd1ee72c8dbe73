// The vmsim command runs, generates, and inspects demand-paged virtual
// memory simulations.
package main

func main() {
	Execute()
}
