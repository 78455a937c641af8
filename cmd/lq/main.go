package main

import "lifequest/cmd/lq/root"

func main() {
	root.Execute()
}
