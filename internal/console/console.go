// Package console is the line-based menu front end of the hub.
//
// It is a thin caller of the device registry: every command maps to one
// registry or session operation and the result is printed. User-facing
// text goes to the console writer, never through the logger.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/nerrad567/gray-logic-hub/internal/device"
)

// Registry is the operation surface the console drives.
type Registry interface {
	ListQuickViews() []string
	SortByName()
	SortByType()
	AddDevice(kind device.Kind, name string) (device.Device, error)
	OneClickAction(name string) (string, error)
	OpenSession(name string) (*device.Session, error)
}

// Logger records session activity. Compatible with logging.Logger.
type Logger interface {
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}

// Console runs the main menu loop over a reader and writer.
type Console struct {
	reg    Registry
	out    io.Writer
	logger Logger

	lines      chan string
	stop       chan struct{}
	stopOnce   sync.Once
	readerDone chan struct{}
}

// New creates a console. Input is read on a background goroutine so Run
// can return on context cancellation while a read is pending.
func New(reg Registry, in io.Reader, out io.Writer) *Console {
	c := &Console{
		reg:        reg,
		out:        out,
		logger:     noopLogger{},
		lines:      make(chan string),
		stop:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	go c.readLines(in)
	return c
}

// SetLogger sets the logger for session open and close records.
func (c *Console) SetLogger(logger Logger) {
	c.logger = logger
}

// readLines feeds input lines to readLine until EOF or until Run returns.
// A read already blocked on in is abandoned when Run returns; the
// goroutine exits once that read completes.
func (c *Console) readLines(in io.Reader) {
	defer close(c.readerDone)
	defer close(c.lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case c.lines <- strings.TrimRight(sc.Text(), "\r"):
		case <-c.stop:
			return
		}
	}
}

// errInputClosed ends the loop when the input reaches EOF.
var errInputClosed = errors.New("console: input closed")

// readLine prints prompt and waits for the next line.
func (c *Console) readLine(ctx context.Context, prompt string) (string, error) {
	c.printf("%s", prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", errInputClosed
		}
		return line, nil
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...) //nolint:errcheck // terminal output
}

// Run shows the main menu until the user exits, input ends or ctx is
// cancelled. Exit and end of input return nil.
func (c *Console) Run(ctx context.Context) error {
	defer c.stopOnce.Do(func() { close(c.stop) })

	for {
		c.printMainMenu()
		input, err := c.readLine(ctx, "Enter choice: ")
		if err != nil {
			return ignoreClosed(err)
		}

		switch {
		case input == "1":
			c.listDevices()
		case input == "2":
			c.reg.SortByName()
			c.printf("Devices sorted by name.\n")
		case input == "3":
			c.reg.SortByType()
			c.printf("Devices sorted by type and name.\n")
		case input == "5":
			if err := c.addDevice(ctx); err != nil {
				return ignoreClosed(err)
			}
		case input == "9":
			return nil
		case strings.HasPrefix(input, "4 "):
			if err := c.interact(ctx, input[2:]); err != nil {
				return ignoreClosed(err)
			}
		case strings.TrimSpace(input) == "":
			// Blank line: show the menu again.
		default:
			c.oneClick(input)
		}
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}

func (c *Console) printMainMenu() {
	c.printf("\nMenu:\n" +
		"[device name]: Perform device's one-click action\n" +
		"1: List devices\n" +
		"2: Sort by name\n" +
		"3: Sort by device type\n" +
		"4 [device name]: Select device to interact with\n" +
		"5: Add device\n" +
		"9: Exit\n")
}

func (c *Console) listDevices() {
	views := c.reg.ListQuickViews()
	if len(views) == 0 {
		c.printf("No devices found.\n")
		return
	}
	for _, v := range views {
		c.printf("%s\n", v)
	}
}

func (c *Console) addDevice(ctx context.Context) error {
	c.printf("\nAvailable device types:\n")
	for i, k := range device.AllKinds() {
		c.printf("%d: %s\n", i+1, k.Label())
	}

	choice, err := c.readLine(ctx, "Select device type: ")
	if err != nil {
		return err
	}
	kind, err := device.ParseKind(choice)
	if err != nil {
		c.printf("Invalid choice.\n")
		return nil
	}

	name, err := c.readLine(ctx, "Enter device name: ")
	if err != nil {
		return err
	}
	if _, err := c.reg.AddDevice(kind, name); err != nil {
		c.report(err)
		return nil
	}
	c.printf("Device added successfully.\n")
	return nil
}

func (c *Console) oneClick(name string) {
	view, err := c.reg.OneClickAction(name)
	if err != nil {
		c.report(err)
		return
	}
	c.printf("%s\n", view)
}

// interact runs a device session until it reports Done.
func (c *Console) interact(ctx context.Context, name string) error {
	s, err := c.reg.OpenSession(name)
	if err != nil {
		c.report(err)
		return nil
	}
	dev := s.Device()
	c.logger.Info("device session opened", "session_id", s.ID, "device", dev.Name(), "kind", string(dev.Kind()))
	defer func() {
		c.logger.Info("device session closed", "session_id", s.ID, "device", dev.Name(), "done", s.Done())
	}()

	for !s.Done() {
		c.printf("\n%s\n", s.Title())
		opts := s.Options()
		for _, o := range opts {
			c.printf("%s\n", o)
		}

		raw, err := c.readLine(ctx, "Enter choice: ")
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			c.printf("Invalid choice.\n")
			continue
		}

		args, proceed, err := c.collectArgs(ctx, s, opts, id)
		if err != nil {
			return err
		}
		if !proceed {
			continue
		}

		if out, err := s.Apply(id, args...); err != nil {
			c.report(err)
		} else if out.Message != "" {
			c.printf("%s\n", out.Message)
		}
	}
	return nil
}

// collectArgs prompts for the parameters of option id. Unknown ids return
// no arguments so Apply reports the invalid choice. proceed is false when
// the user declines a delete.
func (c *Console) collectArgs(ctx context.Context, s *device.Session, opts []device.Option, id int) (args []string, proceed bool, err error) {
	i := slices.IndexFunc(opts, func(o device.Option) bool { return o.ID == id })
	if i < 0 {
		return nil, true, nil
	}
	o := opts[i]

	if o.Action == device.ActionDelete {
		ok, err := c.confirm(ctx, s.Device().Name())
		if err != nil {
			return nil, false, err
		}
		if !ok {
			c.printf("Delete cancelled.\n")
			return nil, false, nil
		}
	}
	for _, p := range o.Params {
		v, err := c.readLine(ctx, "Enter "+p+": ")
		if err != nil {
			return nil, false, err
		}
		args = append(args, v)
	}
	return args, true, nil
}

func (c *Console) confirm(ctx context.Context, name string) (bool, error) {
	answer, err := c.readLine(ctx, fmt.Sprintf("Are you sure you want to delete %s? (y/n): ", name))
	if err != nil {
		return false, err
	}
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes", nil
}

// report prints an error the way the menu shows problems.
func (c *Console) report(err error) {
	switch {
	case errors.Is(err, device.ErrDeviceNotFound):
		c.printf("Device not found.\n")
	case errors.Is(err, device.ErrInvalidChoice):
		c.printf("Invalid choice.\n")
	default:
		c.printf("Error: %v\n", err)
	}
}
