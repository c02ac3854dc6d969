package core

// ArtifactStore defines the interface for artifact persistence. Artifacts are
// scoped by a run (or pipeline) identifier so one backing store can serve
// many independent runs. Implementations must copy payloads on Save and Get
// so that a stored payload is immutable once written.
type ArtifactStore interface {
	Save(scope, key string, data []byte) error
	Get(scope, key string) ([]byte, error)
	List(scope string) ([]string, error)
	Delete(scope, key string) error
}
