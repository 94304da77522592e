package tipping

import "context"

// AccessResult reports a content gate decision.
type AccessResult struct {
	Granted     bool
	TotalTipped uint64
	Required    uint64
}

// CreateContentGate opens a gate on owner's profile. Only the URL hash is kept.
func (e *Engine) CreateContentGate(ctx context.Context, owner [20]byte, params GateParams) (*ContentGate, error) {
	var out *ContentGate
	err := e.execute(ctx, "create_content_gate", [][20]byte{owner}, func(s *opScope) error {
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		if _, ok, err := s.tx.ContentGateGet(owner, params.ID); err != nil {
			return err
		} else if ok {
			return ErrAccountAlreadyExists
		}
		gate, err := newContentGate(owner, params, s.now)
		if err != nil {
			return err
		}
		if err := profile.openGate(); err != nil {
			return err
		}
		profile.UpdatedAt = s.now
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		if err := s.tx.ContentGatePut(gate); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeGateCreated, s.now, map[string]string{
			"owner":    addr(owner),
			"gateId":   u64(gate.ID),
			"required": u64(gate.RequiredAmount),
		}))
		out = gate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadGate(st State, owner [20]byte, id uint64) (*ContentGate, error) {
	gate, ok, err := st.ContentGateGet(owner, id)
	if err != nil {
		return nil, err
	}
	if !ok || gate == nil {
		return nil, ErrContentGateNotFound
	}
	return gate, nil
}

func tippedTotal(st State, viewer, owner [20]byte) (uint64, error) {
	record, ok, err := st.TipperRecordGet(viewer, owner)
	if err != nil || !ok || record == nil {
		return 0, err
	}
	return record.TotalAmount, nil
}

// VerifyContentAccess grants access when the viewer's cumulative tips to the
// owner reach the gate requirement and counts the grant.
func (e *Engine) VerifyContentAccess(ctx context.Context, viewer, owner [20]byte, id uint64) (*AccessResult, error) {
	var out *AccessResult
	err := e.execute(ctx, "verify_content_access", [][20]byte{viewer, owner}, func(s *opScope) error {
		gate, err := loadGate(s.tx, owner, id)
		if err != nil {
			return err
		}
		total, err := tippedTotal(s.tx, viewer, owner)
		if err != nil {
			return err
		}
		granted, err := gate.CheckAccess(total)
		if err != nil {
			return err
		}
		if !granted {
			return ErrInsufficientTips
		}
		if err := gate.RecordAccess(); err != nil {
			return err
		}
		if err := s.tx.ContentGatePut(gate); err != nil {
			return err
		}
		s.emit(GateAccessedEvent(viewer, gate, total, s.now))
		out = &AccessResult{Granted: true, TotalTipped: total, Required: gate.RequiredAmount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CheckContentAccess reports the access decision without recording it.
func (e *Engine) CheckContentAccess(viewer, owner [20]byte, id uint64) (*AccessResult, error) {
	var out *AccessResult
	err := e.view(func(st State) error {
		gate, err := loadGate(st, owner, id)
		if err != nil {
			return err
		}
		total, err := tippedTotal(st, viewer, owner)
		if err != nil {
			return err
		}
		granted, err := gate.CheckAccess(total)
		if err != nil {
			return err
		}
		out = &AccessResult{Granted: granted, TotalTipped: total, Required: gate.RequiredAmount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CloseContentGate deactivates a gate and frees its active slot.
func (e *Engine) CloseContentGate(ctx context.Context, owner [20]byte, id uint64) (*ContentGate, error) {
	var out *ContentGate
	err := e.execute(ctx, "close_content_gate", [][20]byte{owner}, func(s *opScope) error {
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		gate, err := loadGate(s.tx, owner, id)
		if err != nil {
			return err
		}
		if !gate.Active {
			return ErrContentGateNotActive
		}
		if err := profile.closeGate(); err != nil {
			return err
		}
		gate.Active = false
		profile.UpdatedAt = s.now
		if err := s.tx.ContentGatePut(gate); err != nil {
			return err
		}
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeGateClosed, s.now, map[string]string{
			"owner":       addr(owner),
			"gateId":      u64(gate.ID),
			"accessCount": u64(gate.AccessCount),
		}))
		out = gate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
