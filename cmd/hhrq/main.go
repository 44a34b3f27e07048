// Command hhrq reads the hhr reports written by hhsearch and hhblits, and
// prints their hits, prints their alignments as FASTA or loads them into a
// SQLite store.
package main

import (
	"os"

	"github.com/TuftsBCB/searchio/logger"
)

func main() {
	defer logger.Sync() // Make sure that the buffered is flushed.

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
