// Command clearcache wipes the local storage directory: every chat's
// persisted session, cached orders and preferences. Useful when testing
// against a freshly reset backend.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gasbot/config"
)

func main() {
	cfg := config.Load()

	entries, err := os.ReadDir(cfg.StorageDir)
	if os.IsNotExist(err) {
		fmt.Println("Nothing to clear:", cfg.StorageDir, "does not exist")
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "read storage dir:", err)
		os.Exit(1)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(cfg.StorageDir, e.Name())); err != nil {
			fmt.Fprintln(os.Stderr, "remove", e.Name(), ":", err)
			continue
		}
		removed++
	}
	fmt.Printf("Cleared %d store file(s) from %s\n", removed, cfg.StorageDir)
}
