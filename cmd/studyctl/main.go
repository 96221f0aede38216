// Command studyctl browses the study catalog and generates plans and quizzes
// from the terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(defaultApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
