package hw

import "chip8/hw/hwio"

// NumKeys is the number of keys of the hexadecimal keypad.
const NumKeys = 16

// Keypad holds the pressed state of the 16 keys, one bit per key.
type Keypad uint16

func (k *Keypad) Press(key uint8)   { hwio.WriteBit16((*uint16)(k), uint(key), true) }
func (k *Keypad) Release(key uint8) { hwio.WriteBit16((*uint16)(k), uint(key), false) }

// Pressed reports whether key is down. Out of range keys are never pressed.
func (k Keypad) Pressed(key uint8) bool {
	if key >= NumKeys {
		return false
	}
	return hwio.GetBit16(uint16(k), uint(key))
}

func (k Keypad) String() string {
	const hextable = "0123456789ABCDEF"
	buf := make([]byte, NumKeys)
	for i := range uint8(NumKeys) {
		buf[i] = '.'
		if k.Pressed(i) {
			buf[i] = hextable[i]
		}
	}
	return string(buf)
}
