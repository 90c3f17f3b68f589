package index

// NoteIndex defines the interface for note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n NoteRow, body string) error
	DeleteNote(folder, note string) error
	RenameNote(folder, note, newName string) error
	RenameFolder(folder, newName string) error
	DeleteFolder(folder string) error
	Reset() error
	GetChecksum(folder, note string) (string, error)
	AllChecksums() (map[Key]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
