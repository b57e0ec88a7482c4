package main

import (
	"fmt"
	"os"

	"gitlab.com/dirk.krummacker/pcrm/internal/cli"
)

// Usage example on the command line:
// > go run main.go add Jane Doe --birthday 1990-05-17
// > go run main.go note Jane "Met for coffee"
func main() {
	app := cli.NewApp(os.Stdin, os.Stdout)
	err := app.Command().Execute()
	if closeErr := app.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
