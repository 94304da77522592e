package tipping

import (
	"context"

	"tipledger/observability"
)

// PollVote is a tip-weighted vote; the amount is escrowed in the owner's vault.
type PollVote struct {
	Voter   [20]byte
	Owner   [20]byte
	PollID  uint64
	Option  int
	Amount  uint64
	Message string
}

// PollResult is the outcome of closing a poll.
type PollResult struct {
	Poll   *Poll
	Winner int
}

// CreatePoll opens a poll on owner's profile.
func (e *Engine) CreatePoll(ctx context.Context, owner [20]byte, params PollParams) (*Poll, error) {
	var out *Poll
	err := e.execute(ctx, "create_poll", [][20]byte{owner}, func(s *opScope) error {
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		if _, ok, err := s.tx.PollGet(owner, params.ID); err != nil {
			return err
		} else if ok {
			return ErrAccountAlreadyExists
		}
		poll, err := newPoll(owner, params, s.now)
		if err != nil {
			return err
		}
		if err := profile.openPoll(); err != nil {
			return err
		}
		profile.UpdatedAt = s.now
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		if err := s.tx.PollPut(poll); err != nil {
			return err
		}
		s.emit(newEvent(EventTypePollCreated, s.now, map[string]string{
			"owner":    addr(owner),
			"pollId":   u64(poll.ID),
			"options":  u64(uint64(len(poll.Options))),
			"deadline": u64(poll.Deadline),
		}))
		out = poll
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VotePoll records a vote weighted by the tip amount sent with it.
func (e *Engine) VotePoll(ctx context.Context, v PollVote) (*Poll, error) {
	var out *Poll
	err := e.execute(ctx, "vote_poll", [][20]byte{v.Voter, v.Owner}, func(s *opScope) error {
		if _, err := activePlatform(s.tx); err != nil {
			return err
		}
		if v.Voter == v.Owner {
			return ErrCannotTipSelf
		}
		profile, err := loadProfile(s.tx, v.Owner)
		if err != nil {
			return err
		}
		poll, ok, err := s.tx.PollGet(v.Owner, v.PollID)
		if err != nil {
			return err
		}
		if !ok || poll == nil {
			return ErrPollNotFound
		}
		if _, err := e.admitRate(s.tx, v.Voter, v.Owner, s.now); err != nil {
			return err
		}
		return guarded(s.tx, profile, func() error {
			if err := validateTip(profile, v.Amount, v.Message); err != nil {
				return err
			}
			if err := poll.Vote(v.Option, v.Amount, s.now); err != nil {
				return err
			}
			vault, err := loadVault(s.tx, v.Owner)
			if err != nil {
				return err
			}
			if err := debit(s.tx, v.Voter, v.Amount); err != nil {
				return err
			}
			if err := vault.Deposit(v.Amount); err != nil {
				return err
			}
			if err := s.tx.VaultPut(vault); err != nil {
				return err
			}
			if err := s.tx.PollPut(poll); err != nil {
				return err
			}
			_, isNew, err := recordTipper(s.tx, v.Voter, v.Owner, v.Amount, s.now)
			if err != nil {
				return err
			}
			if err := profile.RecordTip(v.Voter, v.Amount, isNew); err != nil {
				return err
			}
			profile.UpdatedAt = s.now
			s.emit(PollVotedEvent(v.Voter, poll, v.Option, v.Amount, s.now))
			out = poll
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	observability.Ledger().RecordVolume("vote_poll", v.Amount)
	return out, nil
}

// ClosePoll deactivates a poll and reports the option with the largest amount.
func (e *Engine) ClosePoll(ctx context.Context, owner [20]byte, id uint64) (*PollResult, error) {
	var out *PollResult
	err := e.execute(ctx, "close_poll", [][20]byte{owner}, func(s *opScope) error {
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		poll, ok, err := s.tx.PollGet(owner, id)
		if err != nil {
			return err
		}
		if !ok || poll == nil {
			return ErrPollNotFound
		}
		if !poll.Active {
			return ErrPollNotActive
		}
		if err := profile.closePoll(); err != nil {
			return err
		}
		poll.Active = false
		profile.UpdatedAt = s.now
		if err := s.tx.PollPut(poll); err != nil {
			return err
		}
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		winner := poll.Winner()
		s.emit(PollClosedEvent(poll, winner, s.now))
		out = &PollResult{Poll: poll, Winner: winner}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
