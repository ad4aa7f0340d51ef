package main

import "github.com/nfrund/guestbook/cmd/guestbook/cmd"

func main() {
	cmd.Execute()
}
