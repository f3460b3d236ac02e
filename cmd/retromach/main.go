// Retromach runs the emulated machine from the command line.
package main

func main() {
	Execute()
}
