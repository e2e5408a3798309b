package main

import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/quenby/photoframed/internal/cli"
)

func main() {
	cli.Execute()
}
