package main

import "lanbeam/cmd"

func main() {
	cmd.Execute()
}
