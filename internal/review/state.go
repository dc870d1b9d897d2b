package review

import "fmt"

// State 复习卷生成流程的阶段
type State string

const (
	StateIdle                State = "idle"
	StateCheckingEligibility State = "checking_eligibility"
	StateExtracting          State = "extracting"
	StateSelecting           State = "selecting"
	StateBalancing           State = "balancing"
	StateValidating          State = "validating"
	StatePersisting          State = "persisting"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

var stateSequence = []State{
	StateIdle,
	StateCheckingEligibility,
	StateExtracting,
	StateSelecting,
	StateBalancing,
	StateValidating,
	StatePersisting,
	StateDone,
}

var statePercent = map[State]int{
	StateIdle:                0,
	StateCheckingEligibility: 10,
	StateExtracting:          25,
	StateSelecting:           45,
	StateBalancing:           65,
	StateValidating:          80,
	StatePersisting:          90,
	StateDone:                100,
}

// Percent 阶段对应的展示进度
func (s State) Percent() int {
	return statePercent[s]
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Observer 每次状态切换后被调用，percent 为切换后的展示进度
type Observer func(from, to State, percent int)

// Machine 只进不退的状态机：每次只能进入下一个阶段，或从任意非终止阶段进入 Failed
type Machine struct {
	state    State
	percent  int
	history  []State
	observer Observer
}

func NewMachine(observer Observer) *Machine {
	return &Machine{
		state:    StateIdle,
		history:  []State{StateIdle},
		observer: observer,
	}
}

func (m *Machine) State() State {
	return m.state
}

// History 已经历的全部阶段（含 Idle）
func (m *Machine) History() []State {
	out := make([]State, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Machine) Advance(to State) error {
	if m.state.Terminal() {
		return fmt.Errorf("generation already %s", m.state)
	}
	if to != StateFailed && to != nextState(m.state) {
		return fmt.Errorf("invalid transition %s -> %s", m.state, to)
	}

	from := m.state
	m.state = to
	if to != StateFailed {
		m.percent = to.Percent()
	}
	m.history = append(m.history, to)
	if m.observer != nil {
		m.observer(from, to, m.percent)
	}
	return nil
}

func nextState(s State) State {
	for i, st := range stateSequence {
		if st == s && i+1 < len(stateSequence) {
			return stateSequence[i+1]
		}
	}
	return ""
}
