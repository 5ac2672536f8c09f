package main

import "github.com/calebmah/tlcparquet/cmd"

func main() {
	cmd.Execute()
}
