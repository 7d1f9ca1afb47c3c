// Package main is the entry point for the modelcaps CLI, a thin wrapper
// around the capability resolution library.
package main

func main() {
	Execute()
}
