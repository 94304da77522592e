package tipping

import (
	"context"

	"tipledger/observability"
)

// GoalContribution is a contribution towards a goal.
type GoalContribution struct {
	Contributor [20]byte
	Owner       [20]byte
	GoalID      uint64
	Amount      uint64
	Message     string
}

// CreateGoal opens a fundraising goal on owner's profile.
func (e *Engine) CreateGoal(ctx context.Context, owner [20]byte, params GoalParams) (*Goal, error) {
	var out *Goal
	err := e.execute(ctx, "create_goal", [][20]byte{owner}, func(s *opScope) error {
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		if _, ok, err := s.tx.GoalGet(owner, params.ID); err != nil {
			return err
		} else if ok {
			return ErrAccountAlreadyExists
		}
		goal, err := newGoal(owner, params, s.now)
		if err != nil {
			return err
		}
		if err := profile.openGoal(); err != nil {
			return err
		}
		profile.UpdatedAt = s.now
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		if err := s.tx.GoalPut(goal); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeGoalCreated, s.now, map[string]string{
			"owner":    addr(owner),
			"goalId":   u64(goal.ID),
			"target":   u64(goal.Target),
			"deadline": u64(goal.Deadline),
		}))
		out = goal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ContributeGoal pays towards a goal. The platform fee goes to the treasury
// and the remainder directly to the goal owner.
func (e *Engine) ContributeGoal(ctx context.Context, c GoalContribution) (*Goal, error) {
	var out *Goal
	ids := [][20]byte{c.Contributor, c.Owner, TreasuryIdentity}
	err := e.execute(ctx, "contribute_goal", ids, func(s *opScope) error {
		if c.Contributor == c.Owner {
			return ErrCannotTipSelf
		}
		cfg, err := activePlatform(s.tx)
		if err != nil {
			return err
		}
		if c.Amount < MinTipAmount {
			return ErrInvalidContribution
		}
		if err := ValidateMessage(c.Message); err != nil {
			return err
		}
		profile, err := loadProfile(s.tx, c.Owner)
		if err != nil {
			return err
		}
		goal, ok, err := s.tx.GoalGet(c.Owner, c.GoalID)
		if err != nil {
			return err
		}
		if !ok || goal == nil {
			return ErrGoalNotFound
		}
		if err := goal.canContribute(s.now); err != nil {
			return err
		}
		return guarded(s.tx, profile, func() error {
			fee, err := CalculateFee(c.Amount, uint64(cfg.FeeBps))
			if err != nil {
				return err
			}
			if err := transfer(s.tx, c.Contributor, c.Owner, c.Amount-fee); err != nil {
				return err
			}
			if err := transfer(s.tx, c.Contributor, cfg.Treasury, fee); err != nil {
				return err
			}
			contributed, err := s.tx.GoalContributed(c.Owner, c.GoalID, c.Contributor)
			if err != nil {
				return err
			}
			if !contributed {
				if err := s.tx.GoalContributionPut(c.Owner, c.GoalID, c.Contributor); err != nil {
					return err
				}
			}
			wasCompleted := goal.Completed
			if err := goal.AddContribution(c.Amount, !contributed, s.now); err != nil {
				return err
			}
			if err := s.tx.GoalPut(goal); err != nil {
				return err
			}
			_, isNew, err := recordTipper(s.tx, c.Contributor, c.Owner, c.Amount, s.now)
			if err != nil {
				return err
			}
			if err := profile.RecordTip(c.Contributor, c.Amount, isNew); err != nil {
				return err
			}
			profile.UpdatedAt = s.now
			s.emit(GoalContributionEvent(c.Contributor, goal, c.Amount, c.Message, s.now))
			if goal.Completed && !wasCompleted {
				s.emit(newEvent(EventTypeGoalCompleted, s.now, map[string]string{
					"owner":        addr(c.Owner),
					"goalId":       u64(goal.ID),
					"current":      u64(goal.Current),
					"contributors": u64(goal.UniqueContributors),
				}))
			}
			out = goal
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	observability.Ledger().RecordVolume("contribute_goal", c.Amount)
	return out, nil
}

// CloseGoal closes one of owner's goals and frees its active slot.
func (e *Engine) CloseGoal(ctx context.Context, owner [20]byte, id uint64) (*Goal, error) {
	var out *Goal
	err := e.execute(ctx, "close_goal", [][20]byte{owner}, func(s *opScope) error {
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		goal, ok, err := s.tx.GoalGet(owner, id)
		if err != nil {
			return err
		}
		if !ok || goal == nil {
			return ErrGoalNotFound
		}
		if goal.Closed {
			return ErrGoalClosed
		}
		if err := profile.closeGoal(); err != nil {
			return err
		}
		goal.Closed = true
		profile.UpdatedAt = s.now
		if err := s.tx.GoalPut(goal); err != nil {
			return err
		}
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeGoalClosed, s.now, map[string]string{
			"owner":     addr(owner),
			"goalId":    u64(goal.ID),
			"current":   u64(goal.Current),
			"completed": flag(goal.Completed),
		}))
		out = goal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
