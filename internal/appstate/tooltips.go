package appstate

import (
	"errors"
	"fmt"
	"sort"
)

// Screens and tooltip ids of the built-in walkthrough.
const (
	ScreenDummy     = "dummy"
	ScreenDummyNext = "dummyNext"

	TooltipRefresh = "refresh"
	TooltipNext    = "next"
	TooltipCrash   = "crash"
)

var (
	ErrUnknownScreen   = errors.New("unknown screen")
	ErrInvalidSequence = errors.New("invalid tooltip sequence")
)

// ConfigError reports a walkthrough lookup or definition problem for one screen.
type ConfigError struct {
	Screen string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tooltips: screen %q: %v", e.Screen, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Sequence is the display order of tooltips on one screen.
type Sequence struct {
	Screen string
	IDs    []string
}

// Sequences lists the walkthrough of every screen.
type Sequences []Sequence

// DefaultSequences returns the built-in walkthrough.
func DefaultSequences() Sequences {
	return Sequences{
		{Screen: ScreenDummy, IDs: []string{TooltipRefresh, TooltipNext}},
		{Screen: ScreenDummyNext, IDs: []string{TooltipCrash}},
	}
}

// SequencesFromMap converts a screen -> ids mapping (as read from config)
// into Sequences ordered by screen name.
func SequencesFromMap(m map[string][]string) Sequences {
	screens := make([]string, 0, len(m))
	for screen := range m {
		screens = append(screens, screen)
	}
	sort.Strings(screens)

	seqs := make(Sequences, 0, len(screens))
	for _, screen := range screens {
		seqs = append(seqs, Sequence{Screen: screen, IDs: append([]string(nil), m[screen]...)})
	}
	return seqs
}

// Sequencer answers "which tooltip comes next" for a fixed walkthrough.
type Sequencer struct {
	order []string
	seqs  map[string][]string
}

// NewSequencer validates seqs and builds a Sequencer over a private copy.
func NewSequencer(seqs Sequences) (*Sequencer, error) {
	s := &Sequencer{
		order: make([]string, 0, len(seqs)),
		seqs:  make(map[string][]string, len(seqs)),
	}
	for _, seq := range seqs {
		if seq.Screen == "" {
			return nil, &ConfigError{Screen: seq.Screen, Err: fmt.Errorf("%w: empty screen name", ErrInvalidSequence)}
		}
		if _, dup := s.seqs[seq.Screen]; dup {
			return nil, &ConfigError{Screen: seq.Screen, Err: fmt.Errorf("%w: duplicate screen", ErrInvalidSequence)}
		}
		if len(seq.IDs) == 0 {
			return nil, &ConfigError{Screen: seq.Screen, Err: fmt.Errorf("%w: no tooltips", ErrInvalidSequence)}
		}
		for _, id := range seq.IDs {
			if id == "" || id == TooltipNone {
				return nil, &ConfigError{Screen: seq.Screen, Err: fmt.Errorf("%w: reserved or empty id %q", ErrInvalidSequence, id)}
			}
		}
		s.order = append(s.order, seq.Screen)
		s.seqs[seq.Screen] = append([]string(nil), seq.IDs...)
	}
	return s, nil
}

// MustNewSequencer is NewSequencer for static walkthroughs; it panics on error.
func MustNewSequencer(seqs Sequences) *Sequencer {
	s, err := NewSequencer(seqs)
	if err != nil {
		panic(err)
	}
	return s
}

// Screens returns the configured screens in definition order.
func (s *Sequencer) Screens() []string {
	return append([]string(nil), s.order...)
}

// Next returns the tooltip following current on screen, or TooltipNone when
// current is the last one or is not part of the screen's sequence.
func (s *Sequencer) Next(screen, current string) (string, error) {
	ids, ok := s.seqs[screen]
	if !ok {
		return "", &ConfigError{Screen: screen, Err: ErrUnknownScreen}
	}
	for i, id := range ids {
		if id != current {
			continue
		}
		if i+1 < len(ids) {
			return ids[i+1], nil
		}
		break
	}
	return TooltipNone, nil
}

// Reset returns a new mapping with every screen at its first tooltip.
func (s *Sequencer) Reset() Tooltips {
	t := make(Tooltips, len(s.seqs))
	for screen, ids := range s.seqs {
		t[screen] = ids[0]
	}
	return t
}
