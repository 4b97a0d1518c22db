package main

import "github.com/nfrund/topictracker/cmd/topictracker/cmd"

func main() {
	cmd.Execute()
}
