package vm

// Flag is the value of the condition register. Exactly one of the three
// flags is set at any time.
type Flag uint16

// flags
const (
	FLAG_POS Flag = 0b001
	FLAG_ZRO Flag = 0b010
	FLAG_NEG Flag = 0b100
)

func (f Flag) String() string {
	switch f {
	case FLAG_POS:
		return "P"
	case FLAG_ZRO:
		return "Z"
	case FLAG_NEG:
		return "N"
	}
	return "?"
}

// flagOf classifies a register value.
func flagOf(value Word) Flag {
	if value == 0 {
		return FLAG_ZRO
	} else if value>>15 != 0 {
		return FLAG_NEG
	}
	return FLAG_POS
}
