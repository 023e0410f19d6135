package main

import "stakevault/internal/server"

func main() {
	config := server.ConfigLoad()
	server.WatchInit(config)
}
