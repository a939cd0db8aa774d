package logger

import "sync"

type EventType string

const (
	EventCreateFolder EventType = "mkdir"
	EventCopy         EventType = "copy"
	EventSkip         EventType = "skip"
	EventError        EventType = "error"
)

type Event struct {
	Type      EventType
	Source    string
	Target    string
	Size      int64
	Reason    string
	Operation string
	Err       error
}

type Summary struct {
	FoldersCreated int
	FilesCopied    int
	FilesSkipped   int
	Failed         int
	BytesCopied    int64
}

// Recorder keeps every event so a run can be reported after it finishes.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) CreateFolder(path string) {
	r.add(Event{Type: EventCreateFolder, Target: path})
}

func (r *Recorder) Copy(source, target string, size int64) {
	r.add(Event{Type: EventCopy, Source: source, Target: target, Size: size})
}

func (r *Recorder) Skip(path, reason string) {
	r.add(Event{Type: EventSkip, Target: path, Reason: reason})
}

func (r *Recorder) Error(operation, path string, err error) {
	r.add(Event{Type: EventError, Source: path, Operation: operation, Err: err})
}

func (r *Recorder) Debug(message string) {}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]Event, len(r.events))
	copy(events, r.events)
	return events
}

func (r *Recorder) Summary() Summary {
	var s Summary
	for _, e := range r.Events() {
		switch e.Type {
		case EventCreateFolder:
			s.FoldersCreated++
		case EventCopy:
			s.FilesCopied++
			s.BytesCopied += e.Size
		case EventSkip:
			s.FilesSkipped++
		case EventError:
			s.Failed++
		}
	}
	return s
}
