package main

import "commerceq/cmd"

func main() {
	cmd.Run()
}
