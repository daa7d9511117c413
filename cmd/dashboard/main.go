// Command dashboard is the terminal frontend of the tracker backend.
//
//	dashboard                 run the interactive dashboard
//	dashboard sandbox         serve an in-memory backend for development
//	dashboard page <tracker>  print one page of a tracker
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
