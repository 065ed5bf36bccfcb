package main

import (
	"kedoo/cmd"
	"log"
)

func main() {
	cmd.Execute()
	// If Execute() had a problem, Cobra would have called os.Exit.
	// Reaching here means the command completed (or a long-running
	// server shut down cleanly).
	log.Println("Application command execution finished.")
}
