package engine

import "os"

// Deleter abstracts the filesystem delete.
type Deleter interface {
	Remove(path string) error
}

type osDeleter struct{}

func (osDeleter) Remove(path string) error {
	return os.Remove(path)
}
