package main

import "github.com/bz888/digest/cmd"

func main() {
	cmd.ExecuteSummarize()
}
