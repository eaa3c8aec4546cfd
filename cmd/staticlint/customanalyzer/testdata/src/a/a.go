package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("exiting")
	defer func() {
		os.Exit(0)
	}()
	os.Exit(1) // want "direct os.Exit call in main function"
}

func helper() {
	os.Exit(2)
}
