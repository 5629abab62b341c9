package device

import "fmt"

// defaultBrightness is the brightness of a newly added light.
const defaultBrightness = 100

// Light is a dimmable light with a sleep timer.
type Light struct {
	base
	brightness int
}

// NewLight creates a light at full brightness, switched off.
func NewLight(name string) *Light {
	l := &Light{brightness: defaultBrightness}
	l.init(KindLight, name)
	return l
}

// Brightness returns the current level in [0,100].
func (l *Light) Brightness() int { return l.brightness }

// SetBrightness clamps level into [0,100].
func (l *Light) SetBrightness(level int) {
	l.brightness = clampPercent(level)
	l.emit(EventSetting, map[string]float64{"brightness": float64(l.brightness)}, "")
}

// PrimaryToggle switches the light. Switching off cancels any sleep timer.
func (l *Light) PrimaryToggle() {
	if !l.toggle() {
		l.stopTimer(true)
	}
}

// QuickView implements Device.
func (l *Light) QuickView() string {
	if l.IsOn() {
		return fmt.Sprintf("%s: %d%% Brightness [switch off]", l.name, l.brightness)
	}
	return fmt.Sprintf("%s: off [switch on]", l.name)
}

// Options implements Device.
func (l *Light) Options() []Option {
	return []Option{
		{ID: 1, Label: "Toggle " + onOff(!l.IsOn()), Action: ActionDevice},
		{ID: 2, Label: "Set Brightness", Action: ActionDevice, Params: []string{"brightness (0-100)"}},
		{ID: 3, Label: "Set Sleep Timer", Action: ActionDevice, Params: []string{"seconds"}},
		renameOption(),
		deleteOption(6),
		backOption(),
	}
}

// Apply implements Device.
func (l *Light) Apply(id int, args ...string) (string, error) {
	switch id {
	case 1:
		l.PrimaryToggle()
		return fmt.Sprintf("%s is now %s.", l.name, onOff(l.IsOn())), nil
	case 2:
		level, err := argInt(args, 0, "brightness")
		if err != nil {
			return "", err
		}
		l.SetBrightness(level)
		return fmt.Sprintf("Brightness set to %d%%.", l.brightness), nil
	case 3:
		secs, err := argInt(args, 0, "seconds")
		if err != nil {
			return "", err
		}
		if err := l.StartTimer(secs); err != nil {
			return "", err
		}
		return fmt.Sprintf("Sleep timer set for %d seconds.", secs), nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidChoice, id)
	}
}

// Encode implements Device: LIGHT|name|isOn|brightness.
func (l *Light) Encode() string {
	return l.recordHead() + fieldSeparator + fmt.Sprint(l.brightness)
}

// Decode implements Device.
func (l *Light) Decode(record string) error {
	d := newRecordDecoder(record)
	if !l.decodeHead(d) {
		return d.err()
	}
	var level int
	if d.integer(3, &level) {
		l.brightness = clampPercent(level)
	}
	return d.err()
}
