// Package flow implements the bot's conversations as persistent state
// machines. Each flow keeps exactly one state value per user in the session
// store, and clears it on completion, cancellation or error.
package flow

// Event is one user input fed into a flow. The set is closed; the update
// poller translates raw updates into these.
type Event interface {
	isEvent()
}

// FileReceived is a file arriving in a private chat.
type FileReceived struct {
	FileID       string
	FileUniqueID string
	Name         string
	Kind         string
	Size         int64
}

// CategoryChosen is a category button press.
type CategoryChosen struct {
	ID uint64
}

// SubcategoryChosen is a subcategory button press.
type SubcategoryChosen struct {
	ID uint64
}

// FormatChosen is a format button press.
type FormatChosen struct {
	ID uint64
}

// TextInput is a plain text message while a flow is waiting for one.
type TextInput struct {
	Text string
}

// PasswordYes is the "protect with password" confirmation.
type PasswordYes struct{}

// PasswordNo declines password protection.
type PasswordNo struct{}

// Skip skips an optional step.
type Skip struct{}

// Cancel aborts the whole flow.
type Cancel struct{}

func (FileReceived) isEvent()      {}
func (CategoryChosen) isEvent()    {}
func (SubcategoryChosen) isEvent() {}
func (FormatChosen) isEvent()      {}
func (TextInput) isEvent()         {}
func (PasswordYes) isEvent()       {}
func (PasswordNo) isEvent()        {}
func (Skip) isEvent()              {}
func (Cancel) isEvent()            {}
