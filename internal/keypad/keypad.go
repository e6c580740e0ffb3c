// Package keypad implements the 16-key hexadecimal CHIP-8 input device.
package keypad

// KeyCount is the number of keys on the keypad.
const KeyCount = 16

// State is a snapshot of all key levels, indexed by key value.
type State [KeyCount]bool

// Keypad holds the current key levels and the levels of the previous tick.
type Keypad struct {
	keys     State
	previous State
}

// New returns a keypad with all keys released.
func New() *Keypad {
	return &Keypad{}
}

// Reset releases all keys and clears the previous tick snapshot.
func (k *Keypad) Reset() {
	k.keys = State{}
	k.previous = State{}
}

// Update resyncs all keys against the host input snapshot.
func (k *Keypad) Update(state State) {
	for key, pressed := range state {
		k.setKey(key, pressed)
	}
}

// setKey stores the current level of the key as previous level and applies the new level.
func (k *Keypad) setKey(key int, pressed bool) {
	k.previous[key] = k.keys[key]
	k.keys[key] = pressed
}

// Pressed returns whether the key is currently pressed. Only the low nibble
// of the key value is used.
func (k *Keypad) Pressed(key byte) bool {
	return k.keys[key&0xF]
}

// Released returns the key that was pressed in the previous tick and is released
// in the current one. If multiple keys were released, the highest key is returned.
func (k *Keypad) Released() (uint8, bool) {
	for key := KeyCount - 1; key >= 0; key-- {
		if k.previous[key] && !k.keys[key] {
			return uint8(key), true
		}
	}
	return 0, false
}

// State returns the current key levels.
func (k *Keypad) State() State {
	return k.keys
}
