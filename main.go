package main

import "nathanbeddoewebdev/cfdash/cmd"

func main() {
	cmd.Execute()
}
