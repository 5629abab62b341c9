package device

import "fmt"

// defaultVolume is the volume of a newly added speaker.
const defaultVolume = 50

// Speaker plays or stops audio. Its menu never changes the power flag.
type Speaker struct {
	base
	volume  int
	playing bool
}

// NewSpeaker creates a stopped speaker at half volume.
func NewSpeaker(name string) *Speaker {
	s := &Speaker{volume: defaultVolume}
	s.init(KindSpeaker, name)
	return s
}

// Volume returns the current level in [0,100].
func (s *Speaker) Volume() int { return s.volume }

// Playing reports whether audio is playing.
func (s *Speaker) Playing() bool { return s.playing }

// SetVolume clamps level into [0,100].
func (s *Speaker) SetVolume(level int) {
	s.volume = clampPercent(level)
	s.emit(EventSetting, map[string]float64{"volume": float64(s.volume)}, "")
}

// PrimaryToggle toggles play/stop.
func (s *Speaker) PrimaryToggle() {
	s.playing = !s.playing
	detail := "stopped"
	if s.playing {
		detail = "playing"
	}
	s.emit(EventPlayback, nil, detail)
}

// QuickView implements Device.
func (s *Speaker) QuickView() string {
	if s.playing {
		return fmt.Sprintf("%s: Playing (Vol: %d%%) [stop]", s.name, s.volume)
	}
	return fmt.Sprintf("%s: Stopped (Vol: %d%%) [play]", s.name, s.volume)
}

// Options implements Device.
func (s *Speaker) Options() []Option {
	label := "Play"
	if s.playing {
		label = "Stop"
	}
	return []Option{
		{ID: 1, Label: label, Action: ActionDevice},
		{ID: 2, Label: "Set Volume", Action: ActionDevice, Params: []string{"volume (0-100)"}},
		deleteOption(3),
		renameOption(),
		backOption(),
	}
}

// Apply implements Device.
func (s *Speaker) Apply(id int, args ...string) (string, error) {
	switch id {
	case 1:
		s.PrimaryToggle()
		if s.playing {
			return fmt.Sprintf("%s is now playing.", s.name), nil
		}
		return fmt.Sprintf("%s stopped.", s.name), nil
	case 2:
		level, err := argInt(args, 0, "volume")
		if err != nil {
			return "", err
		}
		s.SetVolume(level)
		return fmt.Sprintf("Volume set to %d%%.", s.volume), nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidChoice, id)
	}
}

// Encode implements Device: SPEAKER|name|isOn|volume|playing.
func (s *Speaker) Encode() string {
	return s.recordHead() + fieldSeparator + fmt.Sprint(s.volume) + fieldSeparator + formatBool(s.playing)
}

// Decode implements Device.
func (s *Speaker) Decode(record string) error {
	d := newRecordDecoder(record)
	if !s.decodeHead(d) {
		return d.err()
	}
	var level int
	if d.integer(3, &level) {
		s.volume = clampPercent(level)
	}
	d.boolean(4, &s.playing)
	return d.err()
}
