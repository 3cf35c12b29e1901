package patching

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Kind classifies why a run stopped.
type Kind int

const (
	KindUnknown Kind = iota
	UnsupportedPlatform
	InstallationNotFound
	FileNotFound
	PermissionDenied
	DescriptorReadError
	InvalidVersionFormat
	VersionOutOfRange
	PatchWriteError
	InstanceLocked
	BackupNotFound
)

var kindNames = map[Kind]string{
	KindUnknown:          "Unknown",
	UnsupportedPlatform:  "UnsupportedPlatform",
	InstallationNotFound: "InstallationNotFound",
	FileNotFound:         "FileNotFound",
	PermissionDenied:     "PermissionDenied",
	DescriptorReadError:  "DescriptorReadError",
	InvalidVersionFormat: "InvalidVersionFormat",
	VersionOutOfRange:    "VersionOutOfRange",
	PatchWriteError:      "PatchWriteError",
	InstanceLocked:       "InstanceLocked",
	BackupNotFound:       "BackupNotFound",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned by every stage of the engine.
type Error struct {
	Kind    Kind
	Path    string // file the failure relates to, if any
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Path == "" && t.Message == "" && t.Err == nil
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind Kind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around cause.
func Wrap(kind Kind, path, message string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Message: message, Err: cause}
}

// KindOf returns the kind of the first *Error found in err, including inside
// multierr aggregates. Errors that carry no kind report KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, e := range multierr.Errors(err) {
		var pe *Error
		if errors.As(e, &pe) {
			return pe.Kind
		}
	}
	return KindUnknown
}
