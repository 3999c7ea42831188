package interp

import (
	"fmt"
)

type StepResult int

const (
	ContinueStep StepResult = iota
	EndStep
	ErrorStep
)

func (r StepResult) String() string {
	switch r {
	case ContinueStep:
		return "Continue"
	case EndStep:
		return "End"
	case ErrorStep:
		return "Error"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// LoopFrame is one active FOR binding. ForIndex and NextIndex are
// physical indexes into the program.
type LoopFrame struct {
	Var       string
	Start     float64
	End       float64
	ForIndex  int
	NextIndex int
}

// SubFrame records the physical index of a GOSUB.
type SubFrame struct {
	Index int
	Line  int
}

// DataCursor points at the next unread DATA item.
type DataCursor struct {
	Line int
	Item int
}

type LoopStack []*LoopFrame

func (s *LoopStack) Push(f *LoopFrame) {
	*s = append(*s, f)
}

func (s *LoopStack) Pop() *LoopFrame {
	f := s.Top()
	if f != nil {
		*s = (*s)[:len(*s)-1]
	}
	return f
}

func (s LoopStack) Top() *LoopFrame {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// Find returns the position of the frame owning the FOR at index, or -1.
func (s LoopStack) Find(index int) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].ForIndex == index {
			return i
		}
	}
	return -1
}

type SubStack []SubFrame

func (s *SubStack) Push(f SubFrame) {
	*s = append(*s, f)
}

func (s *SubStack) Pop() (SubFrame, bool) {
	if len(*s) == 0 {
		return SubFrame{}, false
	}
	f := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return f, true
}
