package noteservice

// Event types published after a successful mutation.
const (
	EventCreatedFolder     = "created-folder"
	EventRenamedFolder     = "renamed-folder"
	EventDeletedFolder     = "deleted-folder"
	EventCreatedNote       = "created-note"
	EventRenamedNote       = "renamed-note"
	EventDeletedNote       = "deleted-note"
	EventSavedNote         = "saved-note"
	EventSwitchedWorkspace = "switched-workspace"
)

// Event describes one change to the workspace. For renames, Folder/Note
// carry the new name and OldName the previous one.
type Event struct {
	Type      string `json:"type"`
	Folder    string `json:"folder,omitempty"`
	Note      string `json:"note,omitempty"`
	OldName   string `json:"old_name,omitempty"`
	Workspace string `json:"workspace,omitempty"`
}

// Notifier receives workspace change events. Notify must not block.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }
