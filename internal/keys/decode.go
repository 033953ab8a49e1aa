package keys

import (
	"unicode"
	"unicode/utf8"
)

const esc = 0x1b

// csiLetters maps the final byte of a parameterless CSI sequence (ESC [ X)
// and of an SS3 sequence (ESC O X) to a named key.
var csiLetters = map[byte]string{
	'A': Up,
	'B': Down,
	'C': Right,
	'D': Left,
	'H': Home,
	'F': End,
	'Z': ShiftTab,
}

// tildeCodes maps the numeric parameter of ESC [ n ~ to a named key. Both the
// xterm (1/4) and rxvt (7/8) spellings of Home and End are accepted.
var tildeCodes = map[string]string{
	"1": Home,
	"3": Delete,
	"4": End,
	"5": PageUp,
	"6": PageDown,
	"7": Home,
	"8": End,
}

// Decode turns one chunk read from a raw-mode terminal into key events, in
// input order. Escape sequences that are not in the table, or that were cut
// off by the end of the chunk, are dropped without producing any event.
func Decode(buf []byte) []Event {
	var events []Event
	for i := 0; i < len(buf); {
		b := buf[i]
		switch {
		case b == esc:
			ev, n, ok := decodeEscape(buf[i:])
			if ok {
				events = append(events, ev)
			}
			i += n
		case b < 0x20 || b == 0x7f:
			if ev, ok := decodeControl(b); ok {
				events = append(events, ev)
			}
			i++
		default:
			r, size := utf8.DecodeRune(buf[i:])
			if r != utf8.RuneError && unicode.IsPrint(r) {
				events = append(events, Char(r))
			}
			i += size
		}
	}
	return events
}

// decodeEscape decodes a sequence starting at seq[0] == ESC and returns the
// event, the number of bytes consumed, and whether an event was produced.
func decodeEscape(seq []byte) (Event, int, bool) {
	if len(seq) < 2 {
		return Control(Escape), 1, true
	}
	switch seq[1] {
	case '[':
		return decodeCSI(seq)
	case 'O':
		if len(seq) < 3 {
			return Event{}, len(seq), false
		}
		if name, ok := csiLetters[seq[2]]; ok {
			return Named(name), 3, true
		}
		if seq[2] < 0x20 || seq[2] == 0x7f {
			return Event{}, 2, false
		}
		return Event{}, 3, false
	case esc:
		// ESC ESC: the first is a bare escape, the second starts over.
		return Control(Escape), 1, true
	default:
		return Control(Escape), 1, true
	}
}

// decodeCSI decodes ESC [ params final. Parameter bytes are 0x30-0x3f,
// intermediates 0x20-0x2f and the final byte 0x40-0x7e.
func decodeCSI(seq []byte) (Event, int, bool) {
	j := 2
	for j < len(seq) && seq[j] >= 0x30 && seq[j] <= 0x3f {
		j++
	}
	params := string(seq[2:j])
	for j < len(seq) && seq[j] >= 0x20 && seq[j] <= 0x2f {
		j++
	}
	if j >= len(seq) || seq[j] < 0x40 || seq[j] > 0x7e {
		// Truncated or malformed: drop the sequence so far. The byte that
		// interrupted it is decoded on its own.
		return Event{}, j, false
	}
	final := seq[j]
	n := j + 1

	if params == "" {
		if name, ok := csiLetters[final]; ok {
			return Named(name), n, true
		}
		return Event{}, n, false
	}
	if final == '~' {
		if name, ok := tildeCodes[params]; ok {
			return Named(name), n, true
		}
	}
	return Event{}, n, false
}

func decodeControl(b byte) (Event, bool) {
	switch b {
	case 0x03:
		return Control(CtrlC), true
	case 0x09:
		return Control(Tab), true
	case 0x0a, 0x0d:
		return Control(Enter), true
	case 0x08, 0x7f:
		return Control(Backspace), true
	}
	if b >= 0x01 && b <= 0x1a {
		return Control("ctrl+" + string(rune('a'+b-1))), true
	}
	return Event{}, false
}
