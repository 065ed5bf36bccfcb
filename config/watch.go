package config

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
)

// WatchEnv watches the .env file in the working directory and invokes
// onChange with the freshly parsed variables whenever it is rewritten.
// Used to retune the log level at runtime without a restart.
// Returns a stop function; if the file cannot be watched the watcher is
// simply not started and a no-op stop is returned.
func WatchEnv(onChange func(vars map[string]string)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return func() {}, err
	}

	dir, err := os.Getwd()
	if err != nil {
		watcher.Close()
		return func() {}, err
	}
	// Watch the directory, not the file: editors replace .env atomically
	// and a file watch would be lost on the first rename.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return func() {}, err
	}

	envPath := filepath.Join(dir, ".env")

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != envPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				vars, err := godotenv.Read(envPath)
				if err != nil {
					continue
				}
				onChange(vars)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
