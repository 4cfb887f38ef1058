package main

import (
	"github.com/thereayou/talkroom/cmd/server"
)

func main() {
	server.NewServer().Run()
}
