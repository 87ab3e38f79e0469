package main

import "github.com/winnowhq/winnow/cmd"

func main() {
	cmd.Execute()
}
