package interp

import (
	"github.com/rs/zerolog/log"
)

// Run steps the machine until the program stops or faults. Open file
// handles are closed on return.
func (m *Machine) Run() error {
	defer func() {
		if err := m.Files.CloseAll(); err != nil {
			log.Warn().Err(err).Msg("Run: closing files")
		}
	}()
	for {
		res, err := m.Step()
		switch res {
		case ContinueStep:
			continue
		case EndStep:
			log.Debug().Int("steps", m.Steps).Msg("Run: program stopped")
			return nil
		default:
			log.Debug().Int("steps", m.Steps).Err(err).Msg("Run: program failed")
			return err
		}
	}
}

// CurrentLine returns the line number at the program counter, or 0
// past the end.
func (m *Machine) CurrentLine() int {
	l, err := m.Program.GetLine(m.State.PC)
	if err != nil {
		return 0
	}
	return l.Number
}
