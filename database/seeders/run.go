// Package seeders fills a fresh database with demo accounts and a small
// catalogue. Seeders are registered from init and run in order by the
// seed command; each one is safe to run twice.
package seeders

import (
	"fmt"
	"io"
	"os"
	"sync"

	"gorm.io/gorm"
)

type SeederFunc func(db *gorm.DB) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Out receives progress lines.
var Out io.Writer = os.Stdout

func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order and stops
// on the first error.
func RunAll(db *gorm.DB) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	for _, e := range current {
		fmt.Fprintf(Out, "  • %s … ", e.name)
		if err := e.fn(db); err != nil {
			fmt.Fprintln(Out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(Out, "done")
	}
	return nil
}
