package ports

// ScratchPort copies an input artifact to a private location. The returned
// release func removes the copy and must be called on every exit path.
type ScratchPort interface {
	Acquire(sourcePath string) (path string, release func() error, err error)
}
