package room

// drainInputs runs step 3 of the tick pipeline: pop each player's queued
// inputs in order, splitting one input over multiple ticks if its
// delta_ms exceeds the remaining tick budget.
func (s *Scene) drainInputs(tickBudget float64) {
	for _, p := range s.players {
		if !p.Connected || len(p.pendingInputs) == 0 {
			continue
		}
		remaining := tickBudget
		i := 0
		for ; i < len(p.pendingInputs); i++ {
			if remaining <= 0 {
				break
			}
			in := p.pendingInputs[i]
			inputDt := float64(in.DeltaMs) / 1000.0
			if inputDt > maxInputDeltaSeconds {
				inputDt = maxInputDeltaSeconds
			}

			step := inputDt
			if step > remaining {
				step = remaining
			}
			if step > 0 {
				p.applyMovement(in.Dir, step, s.cfg.Server.MapWidth, s.cfg.Server.MapHeight)
			}
			p.wantsAttacking = in.WantsAttacking

			if in.Seq > p.LastInputSeq || (p.LastInputSeq == 0 && in.Seq == 0 && !p.seenFirstInput) {
				p.LastInputSeq = in.Seq
				p.seenFirstInput = true
				s.MarkPlayerDirty(p.ID, false)
			}

			remaining -= step

			if step < inputDt {
				// Tick budget ran out mid-input; carry the unconsumed
				// remainder forward so next tick finishes it.
				in.DeltaMs = uint32((inputDt - step) * 1000.0)
				p.pendingInputs[i] = in
				break
			}
		}
		p.pendingInputs = p.pendingInputs[i:]
	}
}

const maxInputDeltaSeconds = 0.1

// applyInputDirect seeds last_input_seq without going through the
// queue.
func (p *PlayerRuntime) applyInputDirect(seq uint32) {
	p.LastInputSeq = seq
	p.lastSyncInputSeq = seq
	p.seenFirstInput = true
}
