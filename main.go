package main

import "github.com/KaramelBytes/civtab/cmd"

func main() {
	cmd.Execute()
}
