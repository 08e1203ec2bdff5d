// services/panel/command.go
package panel

import "capbutton-go/types"

// Interpret maps one control byte to its lamp commands. 'Y' and 'X'
// address both players, P1 first. Unknown bytes return nil: the control
// link ignores anything outside the table rather than faulting on it.
func Interpret(b byte) []Command {
	switch b {
	case 'A':
		return []Command{{Player: types.Player1, Mode: types.LampSolid}}
	case 'a':
		return []Command{{Player: types.Player1, Mode: types.LampOff}}
	case 'B':
		return []Command{{Player: types.Player2, Mode: types.LampSolid}}
	case 'b':
		return []Command{{Player: types.Player2, Mode: types.LampOff}}
	case 'Y':
		return []Command{
			{Player: types.Player1, Mode: types.LampSolid},
			{Player: types.Player2, Mode: types.LampSolid},
		}
	case 'X':
		return []Command{
			{Player: types.Player1, Mode: types.LampOff},
			{Player: types.Player2, Mode: types.LampOff},
		}
	case '1':
		return []Command{{Player: types.Player1, Mode: types.LampBlink1Hz}}
	case '2':
		return []Command{{Player: types.Player1, Mode: types.LampBlink2Hz}}
	case '3':
		return []Command{{Player: types.Player1, Mode: types.LampBlink4Hz}}
	case '4':
		return []Command{{Player: types.Player2, Mode: types.LampBlink1Hz}}
	case '5':
		return []Command{{Player: types.Player2, Mode: types.LampBlink2Hz}}
	case '6':
		return []Command{{Player: types.Player2, Mode: types.LampBlink4Hz}}
	}
	return nil
}
