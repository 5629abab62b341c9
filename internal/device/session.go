package device

import (
	"fmt"
	"slices"
)

// Outcome is the result of one Session.Apply call.
type Outcome struct {
	// Message is the text to show the user. May be empty.
	Message string

	// Done reports that the session has ended (back, rename or delete).
	Done bool
}

// Session is one interactive menu conversation with a single device.
// It ends when the user goes back, renames or deletes the device.
type Session struct {
	ID string

	reg  *Registry
	dev  Device
	done bool
}

func newSession(reg *Registry, dev Device) *Session {
	return &Session{ID: GenerateID(), reg: reg, dev: dev}
}

// Device returns the device the session controls.
func (s *Session) Device() Device { return s.dev }

// Done reports whether the session has ended.
func (s *Session) Done() bool { return s.done }

// Title is the heading printed above the menu.
func (s *Session) Title() string {
	return fmt.Sprintf("%s Controls for %s:", s.dev.Label(), s.dev.Name())
}

// Options lists the device menu.
func (s *Session) Options() []Option {
	return s.dev.Options()
}

// Apply runs the option with the given id.
func (s *Session) Apply(id int, args ...string) (Outcome, error) {
	if s.done {
		return Outcome{Done: true}, ErrSessionClosed
	}

	opts := s.dev.Options()
	i := slices.IndexFunc(opts, func(o Option) bool { return o.ID == id })
	if i < 0 {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidChoice, id)
	}

	switch opts[i].Action {
	case ActionBack:
		s.done = true
		return Outcome{Done: true}, nil

	case ActionRename:
		if len(args) == 0 {
			return Outcome{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
		}
		if err := s.reg.Rename(s.dev, args[0]); err != nil {
			return Outcome{}, err
		}
		s.done = true
		return Outcome{Message: fmt.Sprintf("Device renamed to %s.", s.dev.Name()), Done: true}, nil

	case ActionDelete:
		if err := s.reg.removeDevice(s.dev); err != nil {
			return Outcome{}, err
		}
		s.done = true
		return Outcome{Message: fmt.Sprintf("%s deleted.", s.dev.Name()), Done: true}, nil

	default:
		msg, err := s.reg.apply(s.dev, id, args)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Message: msg}, nil
	}
}
