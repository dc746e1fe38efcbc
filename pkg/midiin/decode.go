package midiin

import "gitlab.com/gomidi/midi/v2"

// Decode translates one MIDI message into handler calls and reports
// whether the message was recognized. Note on with velocity zero
// arrives as a note end, per the usual status-byte convention
// (0x90-0x9F vel>0 on, 0x80-0x8F or vel=0 off, 0xB0-0xBF control).
func Decode(msg midi.Message, h Handler) bool {
	var ch, key, vel, cc, val uint8

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		h.NoteOn(int(key), int(vel))
	case msg.GetNoteEnd(&ch, &key):
		h.NoteOff(int(key))
	case msg.GetControlChange(&ch, &cc, &val):
		h.ControlChange(int(cc), int(val))
	default:
		return false
	}
	return true
}
